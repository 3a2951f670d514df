package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth and OptionalAuth.
const (
	KeyUserID = "user_id"
	KeyName   = "name"
	KeyRole   = "role"
)

// tokenQueryParam carries the token for websocket upgrades, where browsers
// cannot set headers.
const tokenQueryParam = "access_token"

// Auth validates the JWT and injects claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			if err := setClaims(c, raw, jwtSecret); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth injects claims when a valid token is present and lets
// anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}
			if raw != "" {
				if err := setClaims(c, raw, jwtSecret); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return c.QueryParam(tokenQueryParam), nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

func setClaims(c echo.Context, raw, jwtSecret string) error {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}

	c.Set(KeyUserID, sub)
	c.Set(KeyName, claims["name"])
	c.Set(KeyRole, claims["role"])
	return nil
}
