package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/infrastructure/db/memory"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []ports.NotificationInput
}

func (d *recordingDispatcher) Enqueue(in ports.NotificationInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, in)
}

func (d *recordingDispatcher) all() []ports.NotificationInput {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ports.NotificationInput(nil), d.sent...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]*domain.Message
}

func (p *recordingPublisher) Publish(conversationID string, msg *domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][]*domain.Message)
	}
	p.messages[conversationID] = append(p.messages[conversationID], msg)
}

// fixture is a marketplace with one client, one executor and one admin.
type fixture struct {
	repos    *ports.Repositories
	notifier *recordingDispatcher
	jobs     *JobService
	client   ports.Actor
	executor ports.Actor
	admin    ports.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	f := &fixture{
		repos:    repos,
		notifier: &recordingDispatcher{},
		client:   ports.Actor{ID: "user_client", Name: "Айгуль", Role: domain.RoleClient},
		executor: ports.Actor{ID: "user_exec", Name: "Бакыт", Role: domain.RoleExecutor},
		admin:    ports.Actor{ID: "user_admin", Name: "Admin", Role: domain.RoleAdmin},
	}
	for _, a := range []ports.Actor{f.client, f.executor, f.admin} {
		err := repos.Users.Create(context.Background(), &domain.User{
			ID: a.ID, Name: a.Name, Email: a.ID + "@example.com", Role: a.Role,
		})
		if err != nil {
			t.Fatalf("seed user %s: %v", a.ID, err)
		}
	}
	f.jobs = NewJobService(repos.Jobs, repos.Idempotency, f.notifier, zerolog.Nop())
	return f
}

func (f *fixture) postJob(t *testing.T, title string) *domain.Job {
	t.Helper()
	res, err := f.jobs.CreateJob(context.Background(), ports.CreateJobInput{
		Title:       title,
		Description: "Нужен простой и запоминающийся логотип",
		Category:    "Дизайн",
		Price:       5000,
		Currency:    "сом",
		Deadline:    time.Now().Add(72 * time.Hour),
		Location:    "Бишкек",
		Urgency:     domain.UrgencyHigh,
		Client:      f.client,
	})
	if err != nil {
		t.Fatalf("create job %q: %v", title, err)
	}
	return res.Job
}
