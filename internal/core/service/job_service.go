package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

const (
	idempotencyScopeJobs = "jobs"
	idempotencyWait      = 2 * time.Second
	idempotencyPoll      = 25 * time.Millisecond
)

type JobService struct {
	jobs     ports.JobRepository
	idem     ports.IdempotencyStore
	notifier ports.NotificationDispatcher
	logger   zerolog.Logger
	now      func() time.Time
	// claimWait bounds how long a retry waits for the request holding its key.
	claimWait time.Duration
}

func NewJobService(jobs ports.JobRepository, idem ports.IdempotencyStore, notifier ports.NotificationDispatcher, logger zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, idem: idem, notifier: notifier, logger: logger, now: time.Now, claimWait: idempotencyWait}
}

// CreateJob posts a new open job owned by the caller. With an idempotency
// key, the first request claims the key and later ones replay its job.
func (s *JobService) CreateJob(ctx context.Context, in ports.CreateJobInput) (*ports.JobResult, error) {
	if err := s.validateNew(in); err != nil {
		return nil, err
	}

	key := ""
	if in.IdempotencyKey != "" && s.idem != nil {
		key = in.Client.ID + ":" + in.IdempotencyKey
		existing, err := s.claim(ctx, key)
		switch {
		case errors.Is(err, domain.ErrRequestInProgress):
			return nil, err
		case err != nil:
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency claim failed, creating anyway")
			key = ""
		case existing != nil:
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("job_id", existing.ID).Msg("idempotent replay")
			return &ports.JobResult{Job: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC()
	job := &domain.Job{
		ID:          domain.NewID("job"),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Price:       in.Price,
		Currency:    in.Currency,
		Deadline:    in.Deadline.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Urgency:     in.Urgency,
		Status:      domain.JobOpen,
		ClientID:    in.Client.ID,
		ClientName:  in.Client.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.Urgency == "" {
		job.Urgency = domain.UrgencyMedium
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error().Err(err).Msg("failed to create job")
		if key != "" {
			if rerr := s.idem.Release(ctx, idempotencyScopeJobs, key); rerr != nil {
				s.logger.Warn().Err(rerr).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if key != "" {
		if err := s.idem.Remember(ctx, idempotencyScopeJobs, key, job.ID); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().Str("job_id", job.ID).Str("client_id", job.ClientID).Str("category", job.Category).Msg("job created")
	return &ports.JobResult{Job: job}, nil
}

// claim reserves key for this request. It returns the job a previous request
// created, or nil when the caller now owns the key. While another request
// holds the key without a result, claim polls until claimWait passes.
func (s *JobService) claim(ctx context.Context, key string) (*domain.Job, error) {
	giveUp := time.NewTimer(s.claimWait)
	defer giveUp.Stop()
	poll := time.NewTicker(idempotencyPoll)
	defer poll.Stop()

	for {
		id, claimed, err := s.idem.Claim(ctx, idempotencyScopeJobs, key)
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, nil
		}
		if id != "" {
			existing, err := s.jobs.FindByID(ctx, id)
			if errors.Is(err, domain.ErrJobNotFound) {
				// The replayed job was deleted; the key now names whatever this request creates.
				return nil, nil
			}
			return existing, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-giveUp.C:
			return nil, domain.ErrRequestInProgress
		case <-poll.C:
		}
	}
}

// validateNew re-checks the rules the transport already enforces so the
// service stays safe when called directly (seed, tests).
func (s *JobService) validateNew(in ports.CreateJobInput) error {
	if in.Client.ID == "" {
		return fmt.Errorf("%w: client is required", domain.ErrValidation)
	}
	if !domain.IsKnownCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	}
	if in.Urgency != "" && !in.Urgency.IsValid() {
		return fmt.Errorf("%w: unknown urgency %q", domain.ErrValidation, in.Urgency)
	}
	if err := validTitle(in.Title); err != nil {
		return err
	}
	if err := validPrice(in.Price); err != nil {
		return err
	}
	if err := s.validDeadline(in.Deadline); err != nil {
		return err
	}
	return validLocation(in.Location)
}

// editPatch validates the edited fields of in against the rules for a new
// job and returns them as a patch.
func (s *JobService) editPatch(in ports.UpdateJobInput) (domain.JobPatch, error) {
	var p domain.JobPatch
	if in.Title != nil {
		if err := validTitle(*in.Title); err != nil {
			return p, err
		}
		title := strings.TrimSpace(*in.Title)
		p.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		p.Description = &desc
	}
	if in.Category != nil {
		if !domain.IsKnownCategory(*in.Category) {
			return p, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *in.Category)
		}
		p.Category = in.Category
	}
	if in.Price != nil {
		if err := validPrice(*in.Price); err != nil {
			return p, err
		}
		p.Price = in.Price
	}
	if in.Currency != nil {
		p.Currency = in.Currency
	}
	if in.Deadline != nil {
		if err := s.validDeadline(*in.Deadline); err != nil {
			return p, err
		}
		deadline := in.Deadline.UTC()
		p.Deadline = &deadline
	}
	if in.Location != nil {
		if err := validLocation(*in.Location); err != nil {
			return p, err
		}
		loc := strings.TrimSpace(*in.Location)
		p.Location = &loc
	}
	if in.Urgency != nil {
		if !in.Urgency.IsValid() {
			return p, fmt.Errorf("%w: unknown urgency %q", domain.ErrValidation, *in.Urgency)
		}
		p.Urgency = in.Urgency
	}
	return p, nil
}

func validTitle(title string) error {
	if len([]rune(strings.TrimSpace(title))) < 5 {
		return fmt.Errorf("%w: title must be at least 5 characters", domain.ErrValidation)
	}
	return nil
}

func validPrice(price float64) error {
	if price < domain.MinJobPrice {
		return fmt.Errorf("%w: price must be at least %d", domain.ErrValidation, domain.MinJobPrice)
	}
	return nil
}

func validLocation(loc string) error {
	if len([]rune(strings.TrimSpace(loc))) < 2 {
		return fmt.Errorf("%w: location must be at least 2 characters", domain.ErrValidation)
	}
	return nil
}

func (s *JobService) validDeadline(d time.Time) error {
	if !d.After(s.now()) {
		return fmt.Errorf("%w: deadline must be in the future", domain.ErrValidation)
	}
	return nil
}

// GetJob returns a single job. Blocked jobs are visible to admins only.
func (s *JobService) GetJob(ctx context.Context, id string, viewer ports.Actor) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsBlocked && !viewer.IsAdmin() && viewer.ID != job.ClientID {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns the jobs matching filter, newest first.
func (s *JobService) ListJobs(ctx context.Context, filter domain.JobFilter, viewer ports.Actor) ([]*domain.Job, error) {
	filter.IncludeBlocked = filter.IncludeBlocked && viewer.IsAdmin()
	return s.jobs.List(ctx, filter)
}

// ListUserJobs returns the jobs owned by clientID, newest first, including moderated ones.
func (s *JobService) ListUserJobs(ctx context.Context, clientID string) ([]*domain.Job, error) {
	return s.jobs.List(ctx, domain.JobFilter{ClientID: clientID, IncludeBlocked: true})
}

// UpdateJob edits an open, unblocked job. Only the owner or an admin may
// edit. The write carries the edited fields only and fails if the job left
// the open state or was blocked in the meantime.
func (s *JobService) UpdateJob(ctx context.Context, in ports.UpdateJobInput) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.IsAdmin() && job.ClientID != in.Actor.ID {
		return nil, domain.ErrForbidden
	}
	if job.IsBlocked {
		return nil, domain.ErrForbidden
	}
	if job.Status != domain.JobOpen {
		return nil, fmt.Errorf("job %s: %w (cannot edit a %s job)", in.JobID, domain.ErrInvalidTransition, job.Status)
	}

	patch, err := s.editPatch(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.jobs.UpdateFields(ctx, in.JobID, domain.JobOpen, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("job %s: %w (concurrent update)", in.JobID, err)
		}
		return nil, err
	}
	s.logger.Info().Str("job_id", in.JobID).Str("actor_id", in.Actor.ID).Msg("job updated")
	return updated, nil
}

// SimilarJobs returns up to domain.SimilarJobsLimit open jobs sharing the
// category or location of jobID, newest first.
func (s *JobService) SimilarJobs(ctx context.Context, jobID string, viewer ports.Actor) ([]*domain.Job, error) {
	current, err := s.GetJob(ctx, jobID, viewer)
	if err != nil {
		return nil, err
	}
	open, err := s.jobs.List(ctx, domain.JobFilter{})
	if err != nil {
		return nil, err
	}
	return domain.SimilarJobs(current, open, domain.SimilarJobsLimit), nil
}

// Earnings summarizes the completed jobs of clientID.
func (s *JobService) Earnings(ctx context.Context, clientID string) (*domain.EarningsSummary, error) {
	list, err := s.ListUserJobs(ctx, clientID)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeEarnings(list)
	return &summary, nil
}

// Accept moves an open job to in_progress on behalf of an executor and
// notifies the owner.
func (s *JobService) Accept(ctx context.Context, jobID string, actor ports.Actor) (*domain.Job, error) {
	if actor.Role != domain.RoleExecutor {
		return nil, domain.ErrForbidden
	}
	job, err := s.transition(ctx, jobID, domain.JobInProgress, func(j *domain.Job) error {
		if j.ClientID == actor.ID {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ports.NotificationInput{
		UserID: job.ClientID,
		Key:    domain.NotificationJobAccepted,
		Args:   map[string]string{"executor": actor.Name, "job": job.Title},
		Type:   domain.NotificationSuccess,
	})
	return job, nil
}

// Complete marks an in-progress job as done. Owner or admin only.
func (s *JobService) Complete(ctx context.Context, jobID string, actor ports.Actor) (*domain.Job, error) {
	return s.transition(ctx, jobID, domain.JobCompleted, ownerOrAdmin(actor))
}

// Cancel cancels an open or in-progress job. Owner or admin only.
func (s *JobService) Cancel(ctx context.Context, jobID string, actor ports.Actor) (*domain.Job, error) {
	return s.transition(ctx, jobID, domain.JobCancelled, ownerOrAdmin(actor))
}

// DeleteJob removes the job from every listing. Owner or admin only.
func (s *JobService) DeleteJob(ctx context.Context, jobID string, actor ports.Actor) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := ownerOrAdmin(actor)(job); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return err
	}
	s.logger.Info().Str("job_id", jobID).Str("actor_id", actor.ID).Msg("job deleted")
	return nil
}

// transition validates and applies a status change. Only status and
// updated_at change; the repository rejects the write if a concurrent
// transition got there first.
func (s *JobService) transition(ctx context.Context, jobID string, next domain.JobStatus, authorize func(*domain.Job) error) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsBlocked {
		return nil, domain.ErrForbidden
	}
	if err := authorize(job); err != nil {
		return nil, err
	}
	if !job.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("job %s: %w (from %s to %s)", jobID, domain.ErrInvalidTransition, job.Status, next)
	}

	updated, err := s.jobs.UpdateStatus(ctx, jobID, job.Status, next, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("job %s: %w (concurrent update)", jobID, err)
		}
		return nil, err
	}

	s.logger.Info().Str("job_id", jobID).Str("from", string(job.Status)).Str("to", string(next)).Msg("job status changed")
	return updated, nil
}

func (s *JobService) notify(in ports.NotificationInput) {
	if s.notifier == nil || in.UserID == "" {
		return
	}
	s.notifier.Enqueue(in)
}

func ownerOrAdmin(actor ports.Actor) func(*domain.Job) error {
	return func(j *domain.Job) error {
		if actor.IsAdmin() || j.ClientID == actor.ID {
			return nil
		}
		return domain.ErrForbidden
	}
}
