package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placar/api/handler"
	apiMiddleware "placar/api/middleware"
	"placar/api/routes"
	"placar/config"
	"placar/internal/metrics"
	"placar/internal/repository"
	"placar/internal/service"
	"placar/internal/settings"
	"placar/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	db, err := config.ConnectionDb(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}
	validate := validator.New()

	accessManager := utils.JWTManager{
		Secret:         []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.SessionTTL,
	}
	accessIssuer := service.JWTAccessIssuer{Manager: &accessManager}
	mfaIssuer := service.MFATokenIssuerJWT{
		Secret: []byte(cfg.MFAJWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    5 * time.Minute,
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	settingsLogRepo := repository.NewSettingsLogRepository(db)
	verificationRepo := repository.NewVerificationTokenRepository(db)
	mfaRepo := repository.NewMFASecretRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	authConfig := service.AuthConfig{
		Production:      cfg.Production(),
		SessionTTL:      cfg.SessionTTL,
		OTPTTL:          cfg.OTPTTL,
		ResetTokenTTL:   30 * time.Minute,
		MFATokenTTL:     5 * time.Minute,
		MFAIssuer:       cfg.JWTIssuer,
		DefaultTenantID: cfg.DefaultTeamID,
		DispatchTimeout: cfg.DispatchTimeout,
	}

	var emailSender service.EmailSender
	if cfg.ResendAPIKey != "" {
		emailSender = service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppBaseURL)
	} else {
		logger.Warn("RESEND_API_KEY not set, password reset emails are disabled")
	}

	clock := service.RealClock{}
	sessionService := service.NewSessionService(sessionRepo, accessIssuer, securityRepo, clock)
	settingsService := service.NewSettingsService(
		settingsRepo,
		settingsLogRepo,
		userRepo,
		settings.NewValidator(validate),
		clock,
	)
	otpService := service.NewOTPService(
		otpRepo,
		userRepo,
		sessionService,
		settingsService,
		securityRepo,
		service.LogCodeSender{Logger: logger},
		clock,
		authConfig,
		logger,
	)
	authService := service.NewAuthService(
		userRepo,
		verificationRepo,
		mfaRepo,
		securityRepo,
		consentRepo,
		sessionService,
		settingsService,
		emailSender,
		service.BcryptPasswordHasher{},
		mfaIssuer,
		service.NewTOTPProvider(cfg.JWTIssuer),
		clock,
		authConfig,
		logger,
	)
	consentService := service.NewConsentService(consentRepo, clock)

	cookie := handler.DefaultAuthCookie()
	cookie.Domain = cfg.CookieDomain
	cookie.Secure = cfg.CookieSecure
	cookie.MaxAge = cfg.SessionTTL

	authHandler := handler.NewAuthHandler(authService, sessionService, validate, logger)
	authHandler.Cookie = cookie
	otpHandler := handler.NewOTPHandler(otpService, validate, logger)
	otpHandler.Cookie = cookie
	settingsHandler := handler.NewSettingsHandler(settingsService, sessionService, consentService, validate, logger)
	settingsHandler.Cookie = cookie

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestID())
	app.Use(metrics.Middleware())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"ip":         v.RemoteIP,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{
		JWT:        &accessManager,
		Sessions:   sessionService,
		CookieName: cookie.Name,
	}
	router := routes.NewRouter(app, authHandler, otpHandler, settingsHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "env": cfg.Environment}).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	logger.Info("server stopped")
}
