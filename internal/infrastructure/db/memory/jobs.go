package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// JobRepository keeps jobs newest first. The same slice backs the global
// listing and every per-client listing, so both always agree.
type JobRepository struct {
	mu   sync.RWMutex
	jobs []*domain.Job
}

func NewJobRepository() *JobRepository {
	return &JobRepository{}
}

func (r *JobRepository) Create(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *j
	r.jobs = prepend(r.jobs, &c)
	return nil
}

func (r *JobRepository) find(id string) int {
	return indexOf(r.jobs, func(x *domain.Job) bool { return x.ID == id })
}

func (r *JobRepository) FindByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.find(id)
	if i < 0 {
		return nil, domain.ErrJobNotFound
	}
	c := *r.jobs[i]
	return &c, nil
}

func (r *JobRepository) UpdateFields(_ context.Context, id string, expect domain.JobStatus, patch domain.JobPatch, at time.Time) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(id)
	if i < 0 {
		return nil, domain.ErrJobNotFound
	}
	j := r.jobs[i]
	if j.IsBlocked {
		return nil, domain.ErrForbidden
	}
	if j.Status != expect {
		return nil, domain.ErrInvalidTransition
	}
	patch.Apply(j)
	j.UpdatedAt = at
	c := *j
	return &c, nil
}

func (r *JobRepository) UpdateStatus(_ context.Context, id string, from, to domain.JobStatus, at time.Time) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(id)
	if i < 0 {
		return nil, domain.ErrJobNotFound
	}
	j := r.jobs[i]
	if j.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	j.Status = to
	j.UpdatedAt = at
	c := *j
	return &c, nil
}

func (r *JobRepository) SetBlocked(_ context.Context, id string, blocked bool) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(id)
	if i < 0 {
		return nil, domain.ErrJobNotFound
	}
	j := r.jobs[i]
	if j.IsBlocked != blocked {
		j.IsBlocked = blocked
		j.UpdatedAt = time.Now().UTC()
	}
	c := *j
	return &c, nil
}

func (r *JobRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(id)
	if i < 0 {
		return domain.ErrJobNotFound
	}
	r.jobs = remove(r.jobs, i)
	return nil
}

func (r *JobRepository) List(_ context.Context, f domain.JobFilter) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Job, 0)
	for _, j := range r.jobs {
		if !f.Matches(j) {
			continue
		}
		c := *j
		out = append(out, &c)
	}
	return out, nil
}
