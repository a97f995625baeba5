package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// AuthCookie describes the session cookie set on every successful login.
type AuthCookie struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

func DefaultAuthCookie() AuthCookie {
	return AuthCookie{
		Name:     "auth_token",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   24 * time.Hour,
	}
}

func (a AuthCookie) set(c echo.Context, token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	maxAge := int(a.MaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((24 * time.Hour).Seconds())
	}
	c.SetCookie(&http.Cookie{
		Name:     a.Name,
		Value:    token,
		Path:     "/",
		Domain:   a.Domain,
		MaxAge:   maxAge,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: a.SameSite,
	})
}

func (a AuthCookie) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     a.Name,
		Value:    "",
		Path:     "/",
		Domain:   a.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: a.SameSite,
	})
}
