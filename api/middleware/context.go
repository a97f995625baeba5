package middleware

import (
	"placar/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextPrincipalKey = "auth_principal"

func SetPrincipal(c echo.Context, p service.Principal) {
	c.Set(contextPrincipalKey, p)
}

func PrincipalFromContext(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(contextPrincipalKey).(service.Principal)
	return p, ok
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}
