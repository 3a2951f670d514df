package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

// ModerationService implements the admin panel use cases. Statistics are
// always recomputed from the stores, never kept as separate counters.
type ModerationService struct {
	users   ports.UserRepository
	jobs    ports.JobRepository
	reports ports.ReportRepository
	log     zerolog.Logger
	now     func() time.Time
}

func NewModerationService(users ports.UserRepository, jobs ports.JobRepository, reports ports.ReportRepository, log zerolog.Logger) *ModerationService {
	return &ModerationService{users: users, jobs: jobs, reports: reports, log: log, now: time.Now}
}

// ListUsers returns users matching filter together with their job counters.
func (s *ModerationService) ListUsers(ctx context.Context, f ports.UserFilter) ([]domain.AdminUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.List(ctx, domain.JobFilter{IncludeBlocked: true})
	if err != nil {
		return nil, err
	}

	total := make(map[string]int)
	completed := make(map[string]int)
	for _, j := range jobs {
		total[j.ClientID]++
		if j.Status == domain.JobCompleted {
			completed[j.ClientID]++
		}
	}

	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.AdminUser, 0, len(users))
	for _, u := range users {
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.Role != "" && f.Role != "all" && u.Role != f.Role {
			continue
		}
		switch f.Status {
		case "blocked":
			if !u.IsBlocked {
				continue
			}
		case "active":
			if u.IsBlocked {
				continue
			}
		}
		out = append(out, domain.AdminUser{User: *u, TotalJobs: total[u.ID], CompletedJobs: completed[u.ID]})
	}
	return out, nil
}

// ListJobs returns every job, blocked ones included, with report counters.
func (s *ModerationService) ListJobs(ctx context.Context, f ports.AdminJobFilter) ([]domain.AdminJob, error) {
	jobs, err := s.jobs.List(ctx, domain.JobFilter{
		Search:         strings.TrimSpace(f.Search),
		Category:       f.Category,
		IncludeBlocked: true,
	})
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, "")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	last := make(map[string]time.Time)
	for _, r := range reports {
		counts[r.JobID]++
		if r.CreatedAt.After(last[r.JobID]) {
			last[r.JobID] = r.CreatedAt
		}
	}

	out := make([]domain.AdminJob, 0, len(jobs))
	for _, j := range jobs {
		aj := domain.AdminJob{Job: *j, ReportsCount: counts[j.ID]}
		if t, ok := last[j.ID]; ok {
			t := t
			aj.LastReported = &t
		}
		out = append(out, aj)
	}
	return out, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status domain.ReportStatus) ([]*domain.Report, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown report status %q", domain.ErrValidation, status)
	}
	return s.reports.List(ctx, status)
}

// BlockUser sets is_blocked on a user. Blocking an already blocked user is a no-op.
func (s *ModerationService) BlockUser(ctx context.Context, id string, admin ports.Actor) (*domain.User, error) {
	if id == admin.ID {
		return nil, fmt.Errorf("%w: admins cannot block themselves", domain.ErrForbidden)
	}
	u, err := s.users.SetBlocked(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Str("admin_id", admin.ID).Msg("user blocked")
	return u, nil
}

func (s *ModerationService) UnblockUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.SetBlocked(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("user unblocked")
	return u, nil
}

func (s *ModerationService) BlockJob(ctx context.Context, id string) (*domain.Job, error) {
	j, err := s.jobs.SetBlocked(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", id).Msg("job blocked")
	return j, nil
}

func (s *ModerationService) UnblockJob(ctx context.Context, id string) (*domain.Job, error) {
	j, err := s.jobs.SetBlocked(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("job_id", id).Msg("job unblocked")
	return j, nil
}

func (s *ModerationService) DeleteUser(ctx context.Context, id string, admin ports.Actor) error {
	if id == admin.ID {
		return fmt.Errorf("%w: admins cannot delete themselves", domain.ErrForbidden)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("admin_id", admin.ID).Msg("user deleted")
	return nil
}

func (s *ModerationService) DeleteJob(ctx context.Context, id string) error {
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("job_id", id).Msg("job deleted by moderator")
	return nil
}

// FileReport records a pending complaint about a job.
func (s *ModerationService) FileReport(ctx context.Context, in ports.FileReportInput) (*domain.Report, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if _, err := s.jobs.FindByID(ctx, in.JobID); err != nil {
		return nil, err
	}

	r := &domain.Report{
		ID:           domain.NewID("rep"),
		JobID:        in.JobID,
		ReporterID:   in.Reporter.ID,
		ReporterName: in.Reporter.Name,
		Reason:       strings.TrimSpace(in.Reason),
		Description:  strings.TrimSpace(in.Description),
		Status:       domain.ReportPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", r.ID).Str("job_id", r.JobID).Msg("report filed")
	return r, nil
}

// UpdateReportStatus advances a report and stamps the reviewer.
// Re-applying the current status is accepted and leaves the report unchanged.
func (s *ModerationService) UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus, reviewer ports.Actor) (*domain.Report, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown report status %q", domain.ErrValidation, status)
	}
	r, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == status {
		return r, nil
	}
	if !r.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("report %s: %w (from %s to %s)", id, domain.ErrInvalidTransition, r.Status, status)
	}

	now := s.now().UTC()
	r.Status = status
	r.ReviewedAt = &now
	r.ReviewedBy = reviewer.ID
	if err := s.reports.Update(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", id).Str("status", string(status)).Str("reviewer", reviewer.ID).Msg("report status updated")
	return r, nil
}

// Statistics recomputes the dashboard counters from the canonical lists.
func (s *ModerationService) Statistics(ctx context.Context) (domain.Statistics, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	jobs, err := s.jobs.List(ctx, domain.JobFilter{IncludeBlocked: true})
	if err != nil {
		return domain.Statistics{}, err
	}
	reports, err := s.reports.List(ctx, "")
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.ComputeStatistics(users, jobs, reports), nil
}
