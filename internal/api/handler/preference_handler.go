package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

const (
	visitorHeader = "X-Visitor-ID"
	visitorCookie = "visitor_id"
	visitorMaxAge = 365 * 24 * time.Hour
)

// PreferenceHandler stores the theme and cookie-consent flags per visitor.
// Signed-in callers are keyed by user id, anonymous ones by the X-Visitor-ID
// header or the visitor_id cookie.
type PreferenceHandler struct {
	service ports.PreferenceService
}

func NewPreferenceHandler(service ports.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get handles GET /v1/preferences.
//
// @Summary      Visitor preferences
// @Tags         preferences
// @Produce      json
// @Param        X-Visitor-ID  header    string  false  "Anonymous visitor id"
// @Success      200           {object}  domain.Preferences
// @Router       /v1/preferences [get]
func (h *PreferenceHandler) Get(c echo.Context) error {
	prefs, err := h.service.Get(c.Request().Context(), visitorID(c, false))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefs)
}

// Update handles PUT /v1/preferences. A visitor without an id gets a new one
// in the visitor_id cookie.
//
// @Summary      Update visitor preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        X-Visitor-ID  header    string              false  "Anonymous visitor id"
// @Param        body          body      preferencesRequest  true   "Flags to change"
// @Success      200           {object}  domain.Preferences
// @Failure      400           {object}  map[string]string
// @Router       /v1/preferences [put]
func (h *PreferenceHandler) Update(c echo.Context) error {
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	prefs, err := h.service.Update(c.Request().Context(), visitorID(c, true), domain.Preferences{
		CookieConsent: req.CookieConsent,
		Theme:         req.Theme,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefs)
}

// visitorID resolves who the preferences belong to. With assign set, an
// unknown anonymous visitor gets a fresh id stored in a cookie.
func visitorID(c echo.Context, assign bool) string {
	if actor, ok := optionalActor(c); ok {
		return actor.ID
	}
	if id := c.Request().Header.Get(visitorHeader); id != "" {
		return id
	}
	if ck, err := c.Cookie(visitorCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if !assign {
		return ""
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set(visitorHeader, id)
	return id
}
