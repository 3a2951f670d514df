package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/api/middleware"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

// ctxActor extracts the caller injected by the Auth middleware. A missing
// subject means the middleware did not run, which is reported as 401.
func ctxActor(c echo.Context) (ports.Actor, error) {
	actor, ok := optionalActor(c)
	if !ok {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}

// optionalActor is ctxActor for routes that also serve anonymous visitors.
func optionalActor(c echo.Context) (ports.Actor, bool) {
	id, _ := c.Get(middleware.KeyUserID).(string)
	if id == "" {
		return ports.Actor{}, false
	}
	name, _ := c.Get(middleware.KeyName).(string)
	role, _ := c.Get(middleware.KeyRole).(string)
	return ports.Actor{ID: id, Name: name, Role: role}, true
}

func ctxLang(c echo.Context) i18n.Lang {
	if lang, ok := c.Get(middleware.KeyLang).(i18n.Lang); ok {
		return lang
	}
	return i18n.Default
}
