package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/api/middleware"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/i18n"
)

func TestHTTPErrorHandler(t *testing.T) {
	tr := i18n.MustNew("ru")
	handle := NewHTTPErrorHandler(zerolog.Nop(), tr)

	tests := []struct {
		name   string
		err    error
		lang   i18n.Lang
		status int
		code   string
	}{
		{"job not found", fmt.Errorf("get job: %w", domain.ErrJobNotFound), i18n.RU, http.StatusNotFound, "not_found"},
		{"report not found", domain.ErrReportNotFound, i18n.KY, http.StatusNotFound, "not_found"},
		{"blocked", domain.ErrUserBlocked, i18n.RU, http.StatusForbidden, "user_blocked"},
		{"forbidden", domain.ErrForbidden, i18n.RU, http.StatusForbidden, "forbidden"},
		{"transition", fmt.Errorf("%w: completed -> open", domain.ErrInvalidTransition), i18n.RU, http.StatusUnprocessableEntity, "invalid_transition"},
		{"credentials", domain.ErrInvalidCredentials, i18n.KY, http.StatusUnauthorized, "invalid_credentials"},
		{"exists", domain.ErrUserExists, i18n.RU, http.StatusConflict, "user_exists"},
		{"idempotent retry in flight", domain.ErrRequestInProgress, i18n.KY, http.StatusConflict, "in_progress"},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), i18n.RU, http.StatusBadRequest, "validation"},
		{"rate limited", domain.ErrRateLimited, i18n.RU, http.StatusTooManyRequests, "rate_limited"},
		{"echo 401", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), i18n.RU, http.StatusUnauthorized, "unauthorized"},
		{"echo 405", echo.ErrMethodNotAllowed, i18n.RU, http.StatusMethodNotAllowed, "not_found"},
		{"body too large", echo.ErrStatusRequestEntityTooLarge, i18n.KY, http.StatusRequestEntityTooLarge, "payload_too_large"},
		{"stream disabled", echo.NewHTTPError(http.StatusServiceUnavailable, "live updates are disabled"), i18n.RU, http.StatusServiceUnavailable, "unavailable"},
		{"unexpected", errors.New("mongo: connection reset"), i18n.RU, http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.Set(middleware.KeyLang, tt.lang)

			handle(tt.err, c)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, resp.Code)
			}
			if want := tr.T(tt.lang, "error."+tt.code); resp.Error != want || want == "error."+tt.code {
				t.Fatalf("expected a localized %q, got %q", want, resp.Error)
			}
			if tt.code == "internal" && resp.Details != "" {
				t.Fatalf("internal errors must not leak details: %q", resp.Details)
			}
		})
	}
}

func TestHTTPErrorHandler_LogsRequestIdentity(t *testing.T) {
	var buf bytes.Buffer
	handle := NewHTTPErrorHandler(zerolog.New(&buf), i18n.MustNew("ru"))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil), rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-42")
	c.Set(middleware.KeyUserID, "user_ivan")

	handle(errors.New("mongo: connection reset"), c)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one log entry, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-42" || entry["user_id"] != "user_ivan" {
		t.Fatalf("log entry lacks request identity: %v", entry)
	}
	if entry["error"] != "mongo: connection reset" {
		t.Fatalf("log entry lacks the cause: %v", entry)
	}
}

func TestHTTPErrorHandler_HeadAndCommitted(t *testing.T) {
	handle := NewHTTPErrorHandler(zerolog.Nop(), i18n.MustNew("ru"))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	handle(domain.ErrJobNotFound, c)
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("HEAD: expected bodiless 404, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)
	handle(domain.ErrForbidden, c)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("committed response must be left alone, got %d", rec.Code)
	}
}
