package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/core/domain"
)

// AccountLookup loads the account behind a token subject.
type AccountLookup interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// ActiveAccount rejects tokens whose account was blocked or deleted after the
// token was issued. It must run after Auth.
func ActiveAccount(accounts AccountLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(KeyUserID).(string)
			user, err := accounts.Profile(c.Request().Context(), id)
			if errors.Is(err, domain.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
			}
			if err != nil {
				return err
			}
			if user.IsBlocked {
				return domain.ErrUserBlocked
			}
			return next(c)
		}
	}
}
