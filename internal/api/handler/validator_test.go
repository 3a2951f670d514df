package handler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

func TestValidator_FieldMessages(t *testing.T) {
	v := NewValidator()
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	req := createJobRequest{
		Title:       "Logo",
		Description: "too short",
		Category:    "Design",
		Price:       50,
		Currency:    "KGS",
		Deadline:    fixed.Add(-time.Hour),
		Location:    "Бишкек",
		Urgency:     "asap",
	}
	err := v.Validate(req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	for _, want := range []string{
		"title must be at least 5 characters",
		"description must be at least 20 characters",
		"category must be a known category",
		"price must be at least 100",
		"deadline must be in the future",
		"urgency must be one of: low medium high",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %q", want, err.Error())
		}
	}
	if strings.Contains(err.Error(), "location") {
		t.Errorf("location is valid but reported: %q", err.Error())
	}
}

func TestValidator_PartialUpdate(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(updateJobRequest{}); err != nil {
		t.Fatalf("empty update must be valid: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if err := v.Validate(updateJobRequest{Deadline: &past}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected past deadline to fail, got %v", err)
	}

	cat := "Переводы"
	if err := v.Validate(updateJobRequest{Category: &cat}); err != nil {
		t.Fatalf("known category rejected: %v", err)
	}
}
