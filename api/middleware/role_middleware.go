package middleware

import (
	"net/http"

	"placar/internal/rbac"

	"github.com/labstack/echo/v4"
)

// RequireRole lets through callers holding any of roles. Must run after
// RequireAuth.
func RequireRole(roles ...rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
		}
	}
}

// RequireTenantAdmin admits team admins and super admins.
func RequireTenantAdmin() echo.MiddlewareFunc {
	return RequireRole(rbac.RoleAdminTime, rbac.RoleSuperAdmin)
}

func RequirePermission(permission rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			if !p.Can(permission) {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
