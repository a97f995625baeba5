package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"placar/internal/entity"
	"placar/internal/rbac"
	"placar/internal/repository/memory"
	"placar/internal/service"
	"placar/internal/settings"
	"placar/internal/utils"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEmail struct {
	to    string
	token string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeEmailSender) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{to: email, token: token})
	return nil
}

func (f *fakeEmailSender) last() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type harness struct {
	store    *memory.Store
	clock    *fakeClock
	jwt      *utils.JWTManager
	emails   *fakeEmailSender
	totp     *service.TOTPProvider
	sessions *service.SessionService
	settings *service.SettingsService
	otp      *service.OTPService
	auth     *service.AuthService
	consents *service.ConsentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		store:  memory.NewStore(),
		clock:  newFakeClock(),
		emails: &fakeEmailSender{},
	}
	h.jwt = &utils.JWTManager{Secret: []byte("test-secret"), Issuer: "placar-test", Now: h.clock.Now}
	h.totp = service.NewTOTPProvider("Placar")
	h.totp.Clock = h.clock

	config := service.AuthConfig{
		SessionTTL:      24 * time.Hour,
		OTPTTL:          5 * time.Minute,
		DefaultTenantID: "club-1",
	}
	h.sessions = service.NewSessionService(
		h.store.Sessions(),
		service.JWTAccessIssuer{Manager: h.jwt},
		h.store.SecurityLogs(),
		h.clock,
	)
	h.settings = service.NewSettingsService(
		h.store.Settings(),
		h.store.SettingsLogs(),
		h.store.Users(),
		settings.NewValidator(nil),
		h.clock,
	)
	h.otp = service.NewOTPService(
		h.store.OTPs(),
		h.store.Users(),
		h.sessions,
		h.settings,
		h.store.SecurityLogs(),
		service.LogCodeSender{Logger: logger},
		h.clock,
		config,
		logger,
	)
	h.auth = service.NewAuthService(
		h.store.Users(),
		h.store.Tokens(),
		h.store.MFASecrets(),
		h.store.SecurityLogs(),
		h.store.Consents(),
		h.sessions,
		h.settings,
		h.emails,
		service.BcryptPasswordHasher{Cost: 4},
		service.MFATokenIssuerJWT{Secret: []byte("mfa-secret"), Issuer: "placar-test", Clock: h.clock},
		h.totp,
		h.clock,
		config,
		logger,
	)
	h.consents = service.NewConsentService(h.store.Consents(), h.clock)
	return h
}

// principalFor parses a freshly issued token exactly as the middleware does.
func (h *harness) principalFor(t *testing.T, token string) service.Principal {
	t.Helper()
	claims, err := h.jwt.ParseAccessToken(token)
	require.NoError(t, err)
	p, err := service.PrincipalFromClaims(claims, token)
	require.NoError(t, err)
	return p
}

func (h *harness) createUser(t *testing.T, name string, role rbac.Role, teamID string) *entity.User {
	t.Helper()
	email := name + "@placar.test"
	user := &entity.User{Name: name, Email: &email, Role: role, TeamID: teamID, IsActive: true}
	require.NoError(t, h.store.Users().Create(context.Background(), user))
	return user
}

// login starts a stored session for user and returns the caller view of it.
func (h *harness) login(t *testing.T, user *entity.User) (*service.LoginResult, service.Principal) {
	t.Helper()
	result, err := h.sessions.Start(context.Background(), user, nil, nil)
	require.NoError(t, err)
	return result, h.principalFor(t, result.Token)
}
