package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// result: issued, verified, rejected
	otpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placar_otp_total",
			Help: "OTP codes by outcome",
		},
		[]string{"result"},
	)

	// method: password, mfa, otp
	loginTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placar_logins_total",
			Help: "Login attempts by method and outcome",
		},
		[]string{"method", "result"},
	)

	sessionsRevokedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placar_sessions_revoked_total",
			Help: "Sessions deactivated by logout or forced revocation",
		},
	)

	settingsUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placar_settings_updates_total",
			Help: "Settings update attempts by outcome",
		},
		[]string{"result"},
	)
)

func RecordOTP(result string) {
	otpTotal.WithLabelValues(result).Inc()
}

func RecordLogin(method, result string) {
	loginTotal.WithLabelValues(method, result).Inc()
}

func RecordSessionsRevoked(n int64) {
	if n > 0 {
		sessionsRevokedTotal.Add(float64(n))
	}
}

func RecordSettingsUpdate(result string) {
	settingsUpdatesTotal.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labelled by route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
