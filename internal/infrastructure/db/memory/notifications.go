package memory

import (
	"context"
	"sync"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

type NotificationRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byUser: make(map[string][]*domain.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	r.byUser[n.UserID] = prepend(r.byUser[n.UserID], &c)
	return nil
}

func (r *NotificationRepository) List(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byUser[userID]
	out := make([]*domain.Notification, 0, len(src))
	for _, n := range src {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[userID]
	i := indexOf(list, func(n *domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return domain.ErrNotificationNotFound
	}
	list[i].IsRead = true
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, n := range r.byUser[userID] {
		if !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[userID]
	i := indexOf(list, func(n *domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return domain.ErrNotificationNotFound
	}
	r.byUser[userID] = remove(list, i)
	return nil
}

func (r *NotificationRepository) DeleteAll(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byUser[userID])
	delete(r.byUser, userID)
	return n, nil
}

func (r *NotificationRepository) UnreadCount(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unread := 0
	for _, n := range r.byUser[userID] {
		if !n.IsRead {
			unread++
		}
	}
	return unread, nil
}
