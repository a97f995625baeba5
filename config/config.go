package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	HTTPAddr        string
	DatabaseURL     string
	JWTSecret       string
	JWTIssuer       string
	MFAJWTSecret    string
	SessionTTL      time.Duration
	OTPTTL          time.Duration
	DefaultTeamID   string
	CookieDomain    string
	CookieSecure    bool
	ResendAPIKey    string
	EmailFrom       string
	AppBaseURL      string
	AutoMigrate     bool
	DispatchTimeout time.Duration
}

// Load reads a .env file when one exists and then the process
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       getEnv("JWT_ISSUER", "placar"),
		MFAJWTSecret:    os.Getenv("MFA_JWT_SECRET"),
		SessionTTL:      getDuration("SESSION_TTL", 24*time.Hour),
		OTPTTL:          getDuration("OTP_TTL", 5*time.Minute),
		DefaultTeamID:   getEnv("DEFAULT_TEAM_ID", "global"),
		CookieDomain:    os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:    getBool("COOKIE_SECURE", true),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		AppBaseURL:      os.Getenv("APP_BASE_URL"),
		AutoMigrate:     getBool("AUTO_MIGRATE", false),
		DispatchTimeout: getDuration("OTP_DISPATCH_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.MFAJWTSecret == "" {
		cfg.MFAJWTSecret = cfg.JWTSecret
	}
	return cfg, nil
}

func (c Config) Production() bool {
	switch strings.ToLower(c.Environment) {
	case "production", "prod":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
