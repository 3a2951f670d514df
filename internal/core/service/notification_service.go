package service

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

type notificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewNotificationService returns a NotificationService implementation.
func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, log: log, now: time.Now}
}

// Notify stores a new unread notification at the head of the user's inbox.
func (s *notificationService) Notify(ctx context.Context, in ports.NotificationInput) (*domain.Notification, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" && in.Key == "" {
		return nil, fmt.Errorf("%w: title or key is required", domain.ErrValidation)
	}
	typ := in.Type
	if typ == "" {
		typ = domain.NotificationInfo
	}
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrValidation, typ)
	}

	n := &domain.Notification{
		ID:        domain.NewID("ntf"),
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		Message:   in.Message,
		Key:       in.Key,
		Args:      maps.Clone(in.Args),
		Type:      typ,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	s.log.Debug().Str("user_id", in.UserID).Str("type", string(typ)).Msg("notification stored")
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID string) (*ports.NotificationList, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return &ports.NotificationList{Items: items, Unread: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Remove(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *notificationService) Clear(ctx context.Context, userID string) (int, error) {
	return s.repo.DeleteAll(ctx, userID)
}
