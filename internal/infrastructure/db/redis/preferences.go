package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

const (
	fieldTheme   = "theme"
	fieldConsent = "cookie_consent"
)

// PreferenceStore keeps visitor preferences in one hash per visitor.
// Key format: prefs:<visitor_id>
type PreferenceStore struct {
	client redis.Cmdable
}

func NewPreferenceStore(client redis.Cmdable) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func (s *PreferenceStore) Get(ctx context.Context, visitorID string) (domain.Preferences, error) {
	fields, err := s.client.HGetAll(ctx, preferencesKey(visitorID)).Result()
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("preferences get: %w", err)
	}
	p := domain.DefaultPreferences()
	if v := fields[fieldTheme]; v != "" {
		p.Theme = v
	}
	p.CookieConsent = fields[fieldConsent]
	return p, nil
}

func (s *PreferenceStore) Save(ctx context.Context, visitorID string, p domain.Preferences) error {
	err := s.client.HSet(ctx, preferencesKey(visitorID), fieldTheme, p.Theme, fieldConsent, p.CookieConsent).Err()
	if err != nil {
		return fmt.Errorf("preferences save: %w", err)
	}
	return nil
}

func preferencesKey(visitorID string) string {
	return "prefs:" + visitorID
}
