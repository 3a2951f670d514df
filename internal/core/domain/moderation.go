package domain

import "time"

// ReportStatus represents the review state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

var validReportTransitions = map[ReportStatus][]ReportStatus{
	ReportPending:  {ReportReviewed, ReportResolved, ReportDismissed},
	ReportReviewed: {ReportResolved, ReportDismissed},
}

// IsValid reports whether s is a known report status.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a report in status s may move to next.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range validReportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Report is a complaint about a job filed by a user.
type Report struct {
	ID           string       `json:"id" bson:"_id"`
	JobID        string       `json:"job_id" bson:"job_id"`
	ReporterID   string       `json:"reporter_id" bson:"reporter_id"`
	ReporterName string       `json:"reporter_name" bson:"reporter_name"`
	Reason       string       `json:"reason" bson:"reason"`
	Description  string       `json:"description" bson:"description"`
	Status       ReportStatus `json:"status" bson:"status"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	ReviewedBy   string       `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
}

// AdminUser is the moderation view of a user.
type AdminUser struct {
	User
	TotalJobs     int `json:"total_jobs"`
	CompletedJobs int `json:"completed_jobs"`
}

// AdminJob is the moderation view of a job.
type AdminJob struct {
	Job
	ReportsCount int        `json:"reports_count"`
	LastReported *time.Time `json:"last_reported,omitempty"`
}

// Statistics summarises the marketplace for the admin dashboard.
type Statistics struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	BlockedUsers  int `json:"blocked_users"`
	TotalJobs     int `json:"total_jobs"`
	CompletedJobs int `json:"completed_jobs"`
	BlockedJobs   int `json:"blocked_jobs"`
	TotalReports  int `json:"total_reports"`
}

// ComputeStatistics derives the dashboard counters from the canonical lists.
// ActiveUsers + BlockedUsers always equals TotalUsers.
func ComputeStatistics(users []*User, jobs []*Job, reports []*Report) Statistics {
	s := Statistics{
		TotalUsers:   len(users),
		TotalJobs:    len(jobs),
		TotalReports: len(reports),
	}
	for _, u := range users {
		if u.IsBlocked {
			s.BlockedUsers++
		} else {
			s.ActiveUsers++
		}
	}
	for _, j := range jobs {
		if j.Status == JobCompleted {
			s.CompletedJobs++
		}
		if j.IsBlocked {
			s.BlockedJobs++
		}
	}
	return s
}
