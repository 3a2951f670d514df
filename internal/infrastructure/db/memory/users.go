package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users []*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	if indexOf(r.users, func(x *domain.User) bool { return x.ID == u.ID || strings.ToLower(x.Email) == email }) >= 0 {
		return domain.ErrUserExists
	}
	c := *u
	r.users = prepend(r.users, &c)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := indexOf(r.users, func(x *domain.User) bool { return x.ID == id })
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	c := *r.users[i]
	return &c, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	i := indexOf(r.users, func(x *domain.User) bool { return strings.ToLower(x.Email) == email })
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	c := *r.users[i]
	return &c, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.users, func(x *domain.User) bool { return x.ID == id })
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	u := r.users[i]
	patch.Apply(u)
	u.UpdatedAt = at
	c := *u
	return &c, nil
}

func (r *UserRepository) TouchLastActivity(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.users, func(x *domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.users[i].LastActivity = at
	return nil
}

func (r *UserRepository) SetBlocked(_ context.Context, id string, blocked bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.users, func(x *domain.User) bool { return x.ID == id })
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	u := r.users[i]
	if u.IsBlocked != blocked {
		u.IsBlocked = blocked
		u.UpdatedAt = time.Now().UTC()
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.users, func(x *domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.users = remove(r.users, i)
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}
