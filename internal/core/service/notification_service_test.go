package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/infrastructure/db/memory"
)

func TestNotificationService_Inbox(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(memory.NewNotificationRepository(), zerolog.Nop())

	first, err := svc.Notify(ctx, ports.NotificationInput{UserID: "u1", Title: "Добро пожаловать"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationInfo, first.Type, "type defaults to info")
	assert.False(t, first.IsRead)

	second, err := svc.Notify(ctx, ports.NotificationInput{UserID: "u1", Title: "Задание принято", Type: domain.NotificationSuccess})
	require.NoError(t, err)

	inbox, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, inbox.Items, 2)
	assert.Equal(t, second.ID, inbox.Items[0].ID, "newest first")
	assert.Equal(t, 2, inbox.Unread)

	require.NoError(t, svc.MarkRead(ctx, "u1", first.ID))
	inbox, _ = svc.List(ctx, "u1")
	assert.Equal(t, 1, inbox.Unread)

	n, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Remove(ctx, "u1", first.ID))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", first.ID), domain.ErrNotificationNotFound)

	cleared, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
}

func TestNotificationService_Validation(t *testing.T) {
	svc := NewNotificationService(memory.NewNotificationRepository(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Notify(ctx, ports.NotificationInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Notify(ctx, ports.NotificationInput{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Notify(ctx, ports.NotificationInput{UserID: "u1", Title: "x", Type: "loud"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPreferenceService_Merge(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferenceService(memory.NewPreferenceStore())

	p, err := svc.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, p.Theme)

	p, err = svc.Update(ctx, "v1", domain.Preferences{Theme: domain.ThemeDark})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, p.Theme)

	p, err = svc.Update(ctx, "v1", domain.Preferences{CookieConsent: domain.ConsentAccepted})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, p.Theme, "theme survives a consent-only update")
	assert.Equal(t, domain.ConsentAccepted, p.CookieConsent)

	_, err = svc.Update(ctx, "v1", domain.Preferences{Theme: "neon"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, "", domain.Preferences{Theme: domain.ThemeDark})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestKeyedLimiter(t *testing.T) {
	l := NewKeyedLimiter(0.001, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	unlimited := NewKeyedLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow("a"))
	}
}
