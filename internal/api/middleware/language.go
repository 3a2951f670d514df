package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/i18n"
)

// KeyLang holds the i18n.Lang chosen for the request.
const KeyLang = "lang"

// Language resolves the response language. An explicit ?lang= wins over the
// Accept-Language header; anything unsupported falls back to the
// translator's default.
func Language(tr *i18n.Translator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang, ok := i18n.ParseLanguage(c.QueryParam("lang"))
			if !ok {
				lang = tr.Match(c.Request().Header.Get("Accept-Language"))
			}
			c.Set(KeyLang, lang)
			c.Response().Header().Set("Content-Language", string(lang))
			return next(c)
		}
	}
}
