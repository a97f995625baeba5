package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"placar/internal/service"
	"placar/internal/utils"

	"github.com/labstack/echo/v4"
)

const DefaultAuthCookie = "auth_token"

// SessionChecker rejects principals whose stored session was revoked.
type SessionChecker interface {
	Check(ctx context.Context, p service.Principal) error
}

type AuthMiddleware struct {
	JWT        *utils.JWTManager
	Sessions   SessionChecker
	CookieName string
}

// RequireAuth accepts a bearer token or the auth cookie, verifies it and
// puts the caller's Principal on the context.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			token = m.readCookie(c)
		}
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		claims, err := m.JWT.ParseAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		principal, err := service.PrincipalFromClaims(claims, token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		principal.IPAddress = optional(c.RealIP())
		principal.UserAgent = optional(c.Request().UserAgent())

		if m.Sessions != nil {
			if err := m.Sessions.Check(c.Request().Context(), principal); err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				}
				return err
			}
		}
		SetPrincipal(c, principal)
		return next(c)
	}
}

func (m AuthMiddleware) readCookie(c echo.Context) string {
	name := m.CookieName
	if name == "" {
		name = DefaultAuthCookie
	}
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
