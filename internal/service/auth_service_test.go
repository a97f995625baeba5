package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placar/internal/entity"
	"placar/internal/rbac"
	"placar/internal/service"
	"placar/internal/settings"
)

func register(t *testing.T, h *harness, email string) *service.LoginResult {
	t.Helper()
	result, err := h.auth.Register(context.Background(), service.RegisterInput{
		Name:     "Zé da Arquibancada",
		Email:    email,
		Password: "gol-de-placa-10",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterRecordsConsentsAndLogsIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result := register(t, h, " Ze@Placar.Test ")
	require.NotNil(t, result.User)
	require.NotNil(t, result.User.Email)
	assert.Equal(t, "ze@placar.test", *result.User.Email)
	assert.Equal(t, rbac.RoleTorcedor, result.User.Role)
	assert.NotEmpty(t, result.Token)

	root := h.createUser(t, "root", rbac.RoleSuperAdmin, settings.GlobalTenant)
	_, p := h.login(t, root)
	consents, err := h.consents.List(ctx, p, 0, 0)
	require.NoError(t, err)
	types := make([]entity.ConsentType, 0, len(consents))
	for _, c := range consents {
		assert.Equal(t, result.User.ID, c.UserID)
		assert.True(t, c.Accepted)
		types = append(types, c.ConsentType)
	}
	assert.ElementsMatch(t, []entity.ConsentType{entity.ConsentTermsOfUse, entity.ConsentPrivacyPolicy}, types)
}

func TestRegisterRejectsDuplicateAndWeakPasswords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	register(t, h, "ze@placar.test")

	_, err := h.auth.Register(ctx, service.RegisterInput{Name: "Outro", Email: "ZE@placar.test", Password: "gol-de-placa-10"})
	assert.ErrorIs(t, err, service.ErrEmailAlreadyRegistered)

	_, err = h.auth.Register(ctx, service.RegisterInput{Name: "Curta", Email: "curta@placar.test", Password: "a1"})
	assert.ErrorIs(t, err, service.ErrWeakPassword)

	_, err = h.auth.Register(ctx, service.RegisterInput{Name: "Sem numero", Email: "sn@placar.test", Password: "sem-numeros"})
	assert.ErrorIs(t, err, service.ErrWeakPassword)
}

func TestPasswordPolicyFollowsGlobalSettings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.settings.Update(ctx, settings.GlobalTenant, settings.Patch{
		"security": json.RawMessage(`{"passwordPolicy": {"minLength": 20, "requireNumbers": true}}`),
	}, nil)
	require.NoError(t, err)

	_, err = h.auth.Register(ctx, service.RegisterInput{Name: "Zé", Email: "ze@placar.test", Password: "gol-de-placa-10"})
	assert.ErrorIs(t, err, service.ErrWeakPassword)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	register(t, h, "ze@placar.test")

	result, err := h.auth.Login(ctx, service.LoginInput{Email: "ze@placar.test", Password: "gol-de-placa-10"})
	require.NoError(t, err)
	assert.False(t, result.MFARequired)
	assert.NotEmpty(t, result.Token)

	_, err = h.auth.Login(ctx, service.LoginInput{Email: "ze@placar.test", Password: "errada-123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = h.auth.Login(ctx, service.LoginInput{Email: "ninguem@placar.test", Password: "errada-123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	assert.Equal(t, 2, h.store.SecurityLogCount(entity.LoginFailed))
}

func TestLogoutAllEndsEverySessionOfCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := register(t, h, "ze@placar.test")
	second, err := h.auth.Login(ctx, service.LoginInput{Email: "ze@placar.test", Password: "gol-de-placa-10"})
	require.NoError(t, err)

	p := h.principalFor(t, second.Token)
	require.NoError(t, h.sessions.LogoutAll(ctx, p))

	assert.ErrorIs(t, h.sessions.Check(ctx, p), service.ErrInvalidToken)
	assert.ErrorIs(t, h.sessions.Check(ctx, h.principalFor(t, first.Token)), service.ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := register(t, h, "ze@placar.test")

	require.NoError(t, h.auth.RequestPasswordReset(ctx, "ze@placar.test"))
	require.NoError(t, h.auth.RequestPasswordReset(ctx, "ninguem@placar.test"))
	require.Len(t, h.emails.sent, 1)
	sent := h.emails.last()
	assert.Equal(t, "ze@placar.test", sent.to)

	require.NoError(t, h.auth.ResetPassword(ctx, sent.token, "nova-senha-2025"))
	assert.ErrorIs(t, h.auth.ResetPassword(ctx, sent.token, "outra-senha-2025"), service.ErrInvalidToken)

	_, err := h.auth.Login(ctx, service.LoginInput{Email: "ze@placar.test", Password: "gol-de-placa-10"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = h.auth.Login(ctx, service.LoginInput{Email: "ze@placar.test", Password: "nova-senha-2025"})
	assert.NoError(t, err)

	old := h.principalFor(t, registered.Token)
	assert.ErrorIs(t, h.sessions.Check(ctx, old), service.ErrInvalidToken, "reset revokes existing sessions")
}

func TestPasswordResetTokenExpires(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	register(t, h, "ze@placar.test")

	require.NoError(t, h.auth.RequestPasswordReset(ctx, "ze@placar.test"))
	h.clock.Advance(31 * time.Minute)

	err := h.auth.ResetPassword(ctx, h.emails.last().token, "nova-senha-2025")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestMFAEnrolmentAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := register(t, h, "admin@clube.test")

	fan := h.principalFor(t, registered.Token)
	_, err := h.auth.EnableMFA(ctx, fan)
	assert.ErrorIs(t, err, service.ErrForbidden, "fans cannot enrol")

	user := registered.User
	user.Role = rbac.RoleAdminTime
	require.NoError(t, h.store.Users().Update(ctx, user))
	staffLogin, err := h.auth.Login(ctx, service.LoginInput{Email: "admin@clube.test", Password: "gol-de-placa-10"})
	require.NoError(t, err)
	staff := h.principalFor(t, staffLogin.Token)

	url, err := h.auth.EnableMFA(ctx, staff)
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")

	secret, err := h.store.MFASecrets().FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, secret)
	assert.False(t, secret.Enabled())

	assert.ErrorIs(t, h.auth.VerifyMFA(ctx, staff, "000000x"), service.ErrInvalidMFACode)
	code, err := h.totp.Code(secret.Secret, h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.auth.VerifyMFA(ctx, staff, code))

	first, err := h.auth.Login(ctx, service.LoginInput{Email: "admin@clube.test", Password: "gol-de-placa-10"})
	require.NoError(t, err)
	require.True(t, first.MFARequired)
	assert.Empty(t, first.Token)
	assert.NotEmpty(t, first.MFAToken)

	_, err = h.auth.LoginWithMFA(ctx, service.LoginMFAInput{MFAToken: first.MFAToken, Code: "12345x"})
	assert.ErrorIs(t, err, service.ErrInvalidMFACode)

	final, err := h.auth.LoginWithMFA(ctx, service.LoginMFAInput{MFAToken: first.MFAToken, Code: code})
	require.NoError(t, err)
	assert.NotEmpty(t, final.Token)

	_, err = h.auth.LoginWithMFA(ctx, service.LoginMFAInput{MFAToken: final.Token, Code: code})
	assert.ErrorIs(t, err, service.ErrInvalidToken, "an access token is not an mfa token")

	require.NoError(t, h.auth.DisableMFA(ctx, staff))
	again, err := h.auth.Login(ctx, service.LoginInput{Email: "admin@clube.test", Password: "gol-de-placa-10"})
	require.NoError(t, err)
	assert.False(t, again.MFARequired)
}

func TestMeAndActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := register(t, h, "ze@placar.test")
	p := h.principalFor(t, registered.Token)

	me, err := h.auth.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, me.ID)

	activity, err := h.auth.Activity(ctx, p, 10)
	require.NoError(t, err)
	require.NotEmpty(t, activity)
	assert.Equal(t, entity.UserEnrolled, activity[0].Action)
}

func TestConsentRecordAndScopedList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fan := h.createUser(t, "fan", rbac.RoleTorcedor, "club-1")
	rival := h.createUser(t, "rival", rbac.RoleTorcedor, "club-2")
	admin := h.createUser(t, "admin", rbac.RoleAdminTime, "club-1")

	_, pFan := h.login(t, fan)
	_, pRival := h.login(t, rival)
	_, pAdmin := h.login(t, admin)

	_, err := h.consents.Record(ctx, pFan, entity.ConsentMarketing, true)
	require.NoError(t, err)
	_, err = h.consents.Record(ctx, pRival, entity.ConsentImageRights, false)
	require.NoError(t, err)
	_, err = h.consents.Record(ctx, pFan, "newsletter", true)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = h.consents.List(ctx, pFan, 0, 0)
	assert.ErrorIs(t, err, service.ErrForbidden)

	listed, err := h.consents.List(ctx, pAdmin, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, fan.ID, listed[0].UserID)
	assert.Equal(t, entity.ConsentMarketing, listed[0].ConsentType)
}
