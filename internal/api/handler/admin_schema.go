package handler

import "time"

type updateReportRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed resolved dismissed"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	RoleLabel string  `json:"role_label"`
	Avatar    string  `json:"avatar,omitempty"`
	IsBlocked bool    `json:"is_blocked"`
	Rating    float64 `json:"rating"`
	CreatedAt string  `json:"created_at"`
}

type adminUserResponse struct {
	userResponse
	RegistrationDate string `json:"registration_date"`
	LastActivity     string `json:"last_activity,omitempty"`
	TotalJobs        int    `json:"total_jobs"`
	CompletedJobs    int    `json:"completed_jobs"`
}

type adminJobResponse struct {
	jobResponse
	ReportsCount int     `json:"reports_count"`
	LastReported *string `json:"last_reported,omitempty"`
}

type statisticsResponse struct {
	TotalUsers    int    `json:"total_users"`
	ActiveUsers   int    `json:"active_users"`
	BlockedUsers  int    `json:"blocked_users"`
	TotalJobs     int    `json:"total_jobs"`
	CompletedJobs int    `json:"completed_jobs"`
	BlockedJobs   int    `json:"blocked_jobs"`
	TotalReports  int    `json:"total_reports"`
	GeneratedAt   string `json:"generated_at"`
}

type preferencesRequest struct {
	CookieConsent string `json:"cookie_consent" validate:"omitempty,oneof=accepted declined"`
	Theme         string `json:"theme" validate:"omitempty,oneof=light dark"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatTime(*t)
	return &s
}
