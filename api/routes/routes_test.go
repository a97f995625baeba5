package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placar/api/handler"
	"placar/api/middleware"
	"placar/api/routes"
	"placar/internal/entity"
	"placar/internal/rbac"
	"placar/internal/repository/memory"
	"placar/internal/service"
	"placar/internal/settings"
	"placar/internal/utils"
)

type testApp struct {
	echo     *echo.Echo
	store    *memory.Store
	sessions *service.SessionService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	validate := validator.New()
	clock := service.RealClock{}
	jwtManager := &utils.JWTManager{Secret: []byte("test-secret"), Issuer: "placar-test"}
	config := service.AuthConfig{
		SessionTTL:      time.Hour,
		OTPTTL:          5 * time.Minute,
		DefaultTenantID: "club-1",
	}

	sessions := service.NewSessionService(store.Sessions(), service.JWTAccessIssuer{Manager: jwtManager}, store.SecurityLogs(), clock)
	settingsService := service.NewSettingsService(store.Settings(), store.SettingsLogs(), store.Users(), settings.NewValidator(validate), clock)
	otpService := service.NewOTPService(
		store.OTPs(), store.Users(), sessions, settingsService, store.SecurityLogs(),
		service.LogCodeSender{Logger: logger}, clock, config, logger,
	)
	authService := service.NewAuthService(
		store.Users(), store.Tokens(), store.MFASecrets(), store.SecurityLogs(), store.Consents(),
		sessions, settingsService, nil, service.BcryptPasswordHasher{Cost: 4},
		service.MFATokenIssuerJWT{Secret: []byte("mfa-secret"), Issuer: "placar-test"},
		service.NewTOTPProvider("Placar"), clock, config, logger,
	)
	consents := service.NewConsentService(store.Consents(), clock)

	e := echo.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	router := routes.NewRouter(
		e,
		handler.NewAuthHandler(authService, sessions, validate, logger),
		handler.NewOTPHandler(otpService, validate, logger),
		handler.NewSettingsHandler(settingsService, sessions, consents, validate, logger),
		middleware.AuthMiddleware{JWT: jwtManager, Sessions: sessions},
	)
	router.RegisterRoutes()
	return &testApp{echo: e, store: store, sessions: sessions}
}

func (a *testApp) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) loginAs(t *testing.T, name string, role rbac.Role, teamID string) (*entity.User, string) {
	t.Helper()
	email := name + "@placar.test"
	user := &entity.User{Name: name, Email: &email, Role: role, TeamID: teamID, IsActive: true}
	require.NoError(t, a.store.Users().Create(context.Background(), user))
	result, err := a.sessions.Start(context.Background(), user, nil, nil)
	require.NoError(t, err)
	return user, result.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestOTPLoginFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/otp/request", "", `{"phone":"+55 11 98888-7777"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	code, _ := body["devCode"].(string)
	require.Len(t, code, 6)

	rec = app.do(t, http.MethodPost, "/auth/otp/verify", "", `{"phone":"+55 11 98888-7777","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "torcedor", user["role"])
	assert.Equal(t, "club-1", user["teamId"])

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// the code is single use
	rec = app.do(t, http.MethodPost, "/auth/otp/verify", "", `{"phone":"+55 11 98888-7777","code":"`+code+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Código inválido ou expirado", decode(t, rec)["error"])

	rec = app.do(t, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOTPRejectsShortPhoneAndMalformedCode(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/otp/request", "", `{"phone":"1234"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/otp/verify", "", `{"phone":"+55 11 98888-7777","code":"12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Código inválido ou expirado", decode(t, rec)["error"])

	rec = app.do(t, http.MethodPost, "/auth/otp/request", "", `{"phone":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsRequireAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/settings", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "Unauthorized"}, decode(t, rec))

	rec = app.do(t, http.MethodGet, "/settings", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettingsGetAndUpdate(t *testing.T) {
	app := newTestApp(t)
	_, token := app.loginAs(t, "ana", rbac.RoleAdminTime, "club-1")

	rec := app.do(t, http.MethodGet, "/settings", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	general := decode(t, rec)["general"].(map[string]any)
	assert.Equal(t, "pt-BR", general["language"])

	rec = app.do(t, http.MethodPut, "/settings", token, `{"general":{"siteName":"Várzea FC"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	general = decode(t, rec)["general"].(map[string]any)
	assert.Equal(t, "Várzea FC", general["siteName"])
	assert.Equal(t, "pt-BR", general["language"])

	rec = app.do(t, http.MethodGet, "/settings/logs", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "general", logs[0]["module"])
}

func TestSettingsUpdateRejectsInvalidFields(t *testing.T) {
	app := newTestApp(t)
	_, token := app.loginAs(t, "ana", rbac.RoleAdminTime, "club-1")

	rec := app.do(t, http.MethodPut, "/settings", token, `{"payments":{"gateway":"paypal"},"general":{"language":"fr"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Configurações inválidas", body["error"])
	assert.ElementsMatch(t, []any{"general.language", "payments.gateway"}, body["fields"])

	rec = app.do(t, http.MethodPut, "/settings", token, `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/settings/logs", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSettingsForbiddenForFans(t *testing.T) {
	app := newTestApp(t)
	_, token := app.loginAs(t, "bia", rbac.RoleTorcedor, "club-1")

	rec := app.do(t, http.MethodPut, "/settings", token, `{"general":{"siteName":"x"}}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", decode(t, rec)["error"])

	rec = app.do(t, http.MethodGet, "/settings/logs", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/settings/consents", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConsentsRecordedAndListed(t *testing.T) {
	app := newTestApp(t)
	_, fanToken := app.loginAs(t, "bia", rbac.RoleTorcedor, "club-1")
	_, adminToken := app.loginAs(t, "ana", rbac.RoleAdminTime, "club-1")

	rec := app.do(t, http.MethodPost, "/consents", fanToken, `{"consentType":"marketing","accepted":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(t, http.MethodPost, "/consents", fanToken, `{"consentType":"spam","accepted":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/settings/consents", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var consents []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &consents))
	require.Len(t, consents, 1)
	assert.Equal(t, "marketing", consents[0]["consentType"])
}

func TestSessionsListAndKill(t *testing.T) {
	app := newTestApp(t)
	user, first := app.loginAs(t, "bia", rbac.RoleTorcedor, "club-1")
	second, err := app.sessions.Start(context.Background(), user, nil, nil)
	require.NoError(t, err)

	rec := app.do(t, http.MethodGet, "/settings/sessions", first, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)

	current := 0
	for _, s := range listed {
		if s["isCurrent"] == true {
			current++
		}
	}
	assert.Equal(t, 1, current)

	rec = app.do(t, http.MethodDelete, "/settings/sessions?id="+second.SessionID.String(), first, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/me", second.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodDelete, "/settings/sessions", first, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, "/settings/sessions?id=all", first, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/settings/sessions", first, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}

func TestOTPRequestIsRateLimited(t *testing.T) {
	app := newTestApp(t)
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = app.do(t, http.MethodPost, "/auth/otp/request", "", `{"phone":"+55 11 98888-7777"}`)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}
