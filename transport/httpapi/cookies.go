package httpapi

import (
	"net/http"
	"time"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// CookieConfig controls the session cookies. Both cookies are HttpOnly.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns Secure, SameSite=Strict cookies scoped to /api.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/api",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}
