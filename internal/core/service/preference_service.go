package service

import (
	"context"
	"fmt"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

type preferenceService struct {
	store ports.PreferenceStore
}

func NewPreferenceService(store ports.PreferenceStore) ports.PreferenceService {
	return &preferenceService{store: store}
}

func (s *preferenceService) Get(ctx context.Context, visitorID string) (domain.Preferences, error) {
	if visitorID == "" {
		return domain.DefaultPreferences(), nil
	}
	return s.store.Get(ctx, visitorID)
}

// Update merges the non-empty flags of prefs into the stored ones.
func (s *preferenceService) Update(ctx context.Context, visitorID string, prefs domain.Preferences) (domain.Preferences, error) {
	if visitorID == "" {
		return domain.Preferences{}, fmt.Errorf("%w: visitor id is required", domain.ErrValidation)
	}
	current, err := s.store.Get(ctx, visitorID)
	if err != nil {
		return domain.Preferences{}, err
	}

	if prefs.Theme != "" {
		if prefs.Theme != domain.ThemeLight && prefs.Theme != domain.ThemeDark {
			return domain.Preferences{}, fmt.Errorf("%w: unknown theme %q", domain.ErrValidation, prefs.Theme)
		}
		current.Theme = prefs.Theme
	}
	if prefs.CookieConsent != "" {
		if prefs.CookieConsent != domain.ConsentAccepted && prefs.CookieConsent != domain.ConsentDeclined {
			return domain.Preferences{}, fmt.Errorf("%w: unknown consent %q", domain.ErrValidation, prefs.CookieConsent)
		}
		current.CookieConsent = prefs.CookieConsent
	}

	if err := s.store.Save(ctx, visitorID, current); err != nil {
		return domain.Preferences{}, err
	}
	return current, nil
}
