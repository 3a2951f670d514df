package domain

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	ConsentAccepted = "accepted"
	ConsentDeclined = "declined"
)

// Preferences are the per-visitor flags the browser used to keep locally.
type Preferences struct {
	CookieConsent string `json:"cookie_consent"`
	Theme         string `json:"theme"`
}

// DefaultPreferences is what a visitor without stored flags gets.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight}
}
