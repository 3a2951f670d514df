// Package seed loads demo fixtures from YAML into the repositories.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

// Fixture is the on-disk seed format.
type Fixture struct {
	Users   []UserFixture   `yaml:"users"`
	Jobs    []JobFixture    `yaml:"jobs"`
	Reports []ReportFixture `yaml:"reports"`
}

type UserFixture struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Email    string  `yaml:"email"`
	Password string  `yaml:"password"`
	Role     string  `yaml:"role"`
	Avatar   string  `yaml:"avatar"`
	Rating   float64 `yaml:"rating"`
	Blocked  bool    `yaml:"blocked"`
}

type JobFixture struct {
	ID             string  `yaml:"id"`
	Title          string  `yaml:"title"`
	Description    string  `yaml:"description"`
	Category       string  `yaml:"category"`
	Price          float64 `yaml:"price"`
	Currency       string  `yaml:"currency"`
	DeadlineInDays int     `yaml:"deadline_in_days"`
	Location       string  `yaml:"location"`
	Urgency        string  `yaml:"urgency"`
	Status         string  `yaml:"status"`
	Client         string  `yaml:"client"`
	Blocked        bool    `yaml:"blocked"`
}

type ReportFixture struct {
	ID          string `yaml:"id"`
	Job         string `yaml:"job"`
	Reporter    string `yaml:"reporter"`
	Reason      string `yaml:"reason"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates fixture YAML.
func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks references and enumerations. All problems are reported at once.
func (f *Fixture) Validate() error {
	var errs []error
	users := make(map[string]bool, len(f.Users))
	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		switch {
		case u.ID == "" || u.Email == "" || u.Password == "":
			errs = append(errs, fmt.Errorf("users[%d]: id, email and password are required", i))
		case !domain.IsValidRole(u.Role):
			errs = append(errs, fmt.Errorf("users[%d]: unknown role %q", i, u.Role))
		case users[u.ID] || emails[u.Email]:
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id or email", i))
		}
		users[u.ID] = true
		emails[u.Email] = true
	}

	jobs := make(map[string]bool, len(f.Jobs))
	for i, j := range f.Jobs {
		switch {
		case j.ID == "" || j.Title == "":
			errs = append(errs, fmt.Errorf("jobs[%d]: id and title are required", i))
		case !users[j.Client]:
			errs = append(errs, fmt.Errorf("jobs[%d]: unknown client %q", i, j.Client))
		case !domain.IsKnownCategory(j.Category):
			errs = append(errs, fmt.Errorf("jobs[%d]: unknown category %q", i, j.Category))
		case j.Urgency != "" && !domain.Urgency(j.Urgency).IsValid():
			errs = append(errs, fmt.Errorf("jobs[%d]: unknown urgency %q", i, j.Urgency))
		case j.Status != "" && !validJobStatus(domain.JobStatus(j.Status)):
			errs = append(errs, fmt.Errorf("jobs[%d]: unknown status %q", i, j.Status))
		case j.Price <= 0:
			errs = append(errs, fmt.Errorf("jobs[%d]: price must be positive", i))
		}
		jobs[j.ID] = true
	}

	for i, r := range f.Reports {
		switch {
		case !jobs[r.Job]:
			errs = append(errs, fmt.Errorf("reports[%d]: unknown job %q", i, r.Job))
		case !users[r.Reporter]:
			errs = append(errs, fmt.Errorf("reports[%d]: unknown reporter %q", i, r.Reporter))
		case r.Status != "" && !domain.ReportStatus(r.Status).IsValid():
			errs = append(errs, fmt.Errorf("reports[%d]: unknown status %q", i, r.Status))
		}
	}
	return errors.Join(errs...)
}

func validJobStatus(s domain.JobStatus) bool {
	switch s {
	case domain.JobOpen, domain.JobInProgress, domain.JobCompleted, domain.JobCancelled:
		return true
	}
	return false
}

// Options tune Apply.
type Options struct {
	// Now anchors created_at and relative deadlines. Zero means time.Now.
	Now time.Time
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Result counts what Apply stored.
type Result struct {
	Users   int
	Jobs    int
	Reports int
}

// Apply writes the fixture into repos. Users whose email already exists are
// skipped so the same file can be applied on every start.
func Apply(ctx context.Context, repos *ports.Repositories, f *Fixture, opts Options) (Result, error) {
	var res Result
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	names := make(map[string]string, len(f.Users))
	for i, u := range f.Users {
		names[u.ID] = u.Name
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		// Older entries get older timestamps so listings keep file order.
		created := now.Add(-time.Duration(len(f.Users)-i) * time.Minute)
		err = repos.Users.Create(ctx, &domain.User{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Avatar:       u.Avatar,
			PasswordHash: string(hash),
			Role:         u.Role,
			IsBlocked:    u.Blocked,
			Rating:       u.Rating,
			LastActivity: created,
			CreatedAt:    created,
			UpdatedAt:    created,
		})
		if errors.Is(err, domain.ErrUserExists) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		res.Users++
	}

	for i, j := range f.Jobs {
		if _, err := repos.Jobs.FindByID(ctx, j.ID); err == nil {
			continue
		}
		created := now.Add(-time.Duration(len(f.Jobs)-i) * time.Minute)
		job := &domain.Job{
			ID:          j.ID,
			Title:       j.Title,
			Description: j.Description,
			Category:    j.Category,
			Price:       j.Price,
			Currency:    j.Currency,
			Deadline:    now.AddDate(0, 0, j.DeadlineInDays),
			Location:    j.Location,
			Urgency:     domain.Urgency(j.Urgency),
			Status:      domain.JobStatus(j.Status),
			ClientID:    j.Client,
			ClientName:  names[j.Client],
			IsBlocked:   j.Blocked,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if job.Urgency == "" {
			job.Urgency = domain.UrgencyMedium
		}
		if job.Status == "" {
			job.Status = domain.JobOpen
		}
		if err := repos.Jobs.Create(ctx, job); err != nil {
			return res, fmt.Errorf("seed job %s: %w", j.ID, err)
		}
		res.Jobs++
	}

	for _, r := range f.Reports {
		if _, err := repos.Reports.FindByID(ctx, r.ID); err == nil {
			continue
		}
		status := domain.ReportStatus(r.Status)
		if status == "" {
			status = domain.ReportPending
		}
		err := repos.Reports.Create(ctx, &domain.Report{
			ID:           r.ID,
			JobID:        r.Job,
			ReporterID:   r.Reporter,
			ReporterName: names[r.Reporter],
			Reason:       r.Reason,
			Description:  r.Description,
			Status:       status,
			CreatedAt:    now,
		})
		if err != nil {
			return res, fmt.Errorf("seed report %s: %w", r.ID, err)
		}
		res.Reports++
	}
	return res, nil
}
