package routes

import (
	"net/http"
	"time"

	"placar/api/handler"
	"placar/api/middleware"
	"placar/internal/metrics"
	"placar/internal/rbac"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	OTP            *handler.OTPHandler
	Settings       *handler.SettingsHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
	OTPRate        *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	otpHandler *handler.OTPHandler,
	settingsHandler *handler.SettingsHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		OTP:            otpHandler,
		Settings:       settingsHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
		OTPRate:        middleware.NewRateLimiter(rate.Every(20*time.Second), 3, 15*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/auth/otp/request", r.OTP.Request, r.OTPRate.Middleware())
	e.POST("/auth/otp/verify", r.OTP.Verify, r.LoginRate.Middleware())

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/auth/login/mfa", r.Auth.LoginWithMFA, r.LoginRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout, r.AuthRate.Middleware(), requireAuth)
	e.POST("/auth/logout-all", r.Auth.LogoutAll, r.AuthRate.Middleware(), requireAuth)
	e.POST("/auth/password/forgot", r.Auth.PasswordForgot, r.LoginRate.Middleware())
	e.POST("/auth/password/reset", r.Auth.PasswordReset, r.AuthRate.Middleware())
	e.POST("/auth/mfa/enable", r.Auth.EnableMFA, r.AuthRate.Middleware(), requireAuth)
	e.POST("/auth/mfa/verify", r.Auth.VerifyMFA, r.AuthRate.Middleware(), requireAuth)
	e.POST("/auth/mfa/disable", r.Auth.DisableMFA, r.AuthRate.Middleware(), requireAuth)

	e.GET("/me", r.Auth.Me, requireAuth)
	e.GET("/me/activity", r.Auth.Activity, requireAuth)
	e.POST("/consents", r.Settings.RecordConsent, requireAuth)

	settings := e.Group("/settings", requireAuth)
	settings.GET("", r.Settings.Get)
	settings.PUT("", r.Settings.Update, middleware.RequirePermission(rbac.PermSettingsManage))
	settings.GET("/logs", r.Settings.Logs, middleware.RequireTenantAdmin())
	settings.GET("/consents", r.Settings.ListConsents, middleware.RequireTenantAdmin())
	settings.GET("/sessions", r.Settings.ListSessions)
	settings.DELETE("/sessions", r.Settings.KillSessions)
}
