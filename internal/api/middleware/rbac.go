package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// RBAC lets the request through only for the listed roles. It must run after
// Auth; anonymous requests carry no role and are forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if !hasRole(roles, role) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

func hasRole(roles []string, role string) bool {
	if role == "" || !domain.IsValidRole(role) {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
