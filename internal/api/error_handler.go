package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/api/middleware"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/i18n"
	"github.com/kyzmat/marketplace/pkg/logger"
)

// errorResponse is the canonical error envelope for all API errors.
// Code is the stable, untranslated reason; Error is localized.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Localizes the message in the request language.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger, tr *i18n.Translator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, details := resolveError(err, log, c)
		lang, ok := c.Get(middleware.KeyLang).(i18n.Lang)
		if !ok {
			lang = tr.Fallback()
		}

		resp := errorResponse{Error: tr.T(lang, "error."+code), Code: code, Details: details}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, unknown routes, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, codeForStatus(he.Code), fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, domain.ErrUserBlocked):
		return http.StatusForbidden, "user_blocked", ""
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", ""
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid_transition", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", ""
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user_exists", ""
	case errors.Is(err, domain.ErrRequestInProgress):
		return http.StatusConflict, "in_progress", ""
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", ""
	}

	// Unexpected error: log the real cause, return a generic message.
	userID, _ := c.Get(middleware.KeyUserID).(string)
	reqLog := logger.Request(log, c.Response().Header().Get(echo.HeaderXRequestID), userID)
	reqLog.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal", ""
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "validation"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "not_found"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	return "internal"
}
