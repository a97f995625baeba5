package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"placar/internal/entity"
	"placar/internal/metrics"
	"placar/internal/rbac"
	"placar/internal/repository"
	"placar/internal/settings"
	"placar/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthService covers email/password accounts, password reset and staff
// TOTP. Phone login lives in OTPService; both end in SessionService.Start.
type AuthService struct {
	users         repository.UserRepository
	verifications repository.VerificationTokenRepository
	mfaSecrets    repository.MFASecretRepository
	securityLogs  repository.SecurityLogRepository
	consents      repository.ConsentRepository

	sessions     *SessionService
	settings     *SettingsService
	security     securityLogger
	emailSender  EmailSender
	passwordHash PasswordHasher
	mfaTokens    MFATokenIssuer
	mfaProvider  MFAProvider
	clock        Clock
	config       AuthConfig
	logger       logrus.FieldLogger
}

func NewAuthService(
	users repository.UserRepository,
	verifications repository.VerificationTokenRepository,
	mfaSecrets repository.MFASecretRepository,
	securityLogs repository.SecurityLogRepository,
	consents repository.ConsentRepository,
	sessions *SessionService,
	settingsService *SettingsService,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	mfaTokens MFATokenIssuer,
	mfaProvider MFAProvider,
	clock Clock,
	config AuthConfig,
	logger logrus.FieldLogger,
) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:         users,
		verifications: verifications,
		mfaSecrets:    mfaSecrets,
		securityLogs:  securityLogs,
		consents:      consents,
		sessions:      sessions,
		settings:      settingsService,
		security:      securityLogger{repo: securityLogs, logger: logger},
		emailSender:   emailSender,
		passwordHash:  passwordHash,
		mfaTokens:     mfaTokens,
		mfaProvider:   mfaProvider,
		clock:         clock,
		config:        config,
		logger:        logger,
	}
}

// Register creates a torcedor account, records the mandatory consents and
// logs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if err := s.checkPassword(ctx, input.Password); err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(input.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	var phone *string
	if strings.TrimSpace(input.Phone) != "" {
		digits := utils.NormalizePhone(input.Phone)
		if !validPhoneLength(digits) {
			return nil, ErrInvalidPhone
		}
		phone = &digits
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Name:         name,
		Email:        &email,
		Phone:        phone,
		PasswordHash: &hash,
		Role:         rbac.RoleTorcedor,
		TeamID:       s.config.DefaultTenantID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := clockNow(s.clock)
	for _, consentType := range []entity.ConsentType{entity.ConsentTermsOfUse, entity.ConsentPrivacyPolicy} {
		consent := &entity.PrivacyConsent{
			UserID:      user.ID,
			ConsentType: consentType,
			Accepted:    true,
			AcceptedAt:  now,
			IPAddress:   input.IPAddress,
		}
		if err := s.consents.Create(ctx, consent); err != nil {
			return nil, fmt.Errorf("record consent: %w", err)
		}
	}
	s.security.log(ctx, &user.ID, input.IPAddress, entity.UserEnrolled, map[string]any{"method": "password"})

	return s.sessions.Start(ctx, user, input.IPAddress, input.UserAgent)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.PasswordHash == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.loginFailed(ctx, nil, input.IPAddress, email)
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(*user.PasswordHash, input.Password) || !user.IsActive {
		s.loginFailed(ctx, &user.ID, input.IPAddress, email)
		return nil, ErrInvalidCredentials
	}

	if s.mfaProvider != nil && s.mfaSecrets != nil && s.mfaTokens != nil {
		secret, err := s.mfaSecrets.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find mfa secret: %w", err)
		}
		if secret.Enabled() {
			mfaToken, expiresIn, err := s.mfaTokens.IssueMFAToken(user.ID)
			if err != nil {
				return nil, err
			}
			return &LoginResult{
				MFARequired:       true,
				MFAToken:          mfaToken,
				MFATokenExpiresIn: int64(expiresIn.Seconds()),
			}, nil
		}
	}

	result, err := s.sessions.Start(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin("password", "success")
	s.security.log(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, map[string]any{"method": "password"})
	return result, nil
}

func (s *AuthService) LoginWithMFA(ctx context.Context, input LoginMFAInput) (*LoginResult, error) {
	if s.mfaProvider == nil || s.mfaTokens == nil || s.mfaSecrets == nil {
		return nil, ErrMFANotConfigured
	}
	if strings.TrimSpace(input.MFAToken) == "" || strings.TrimSpace(input.Code) == "" {
		return nil, ErrInvalidInput
	}
	userID, err := s.mfaTokens.ParseMFAToken(input.MFAToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	secret, err := s.mfaSecrets.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find mfa secret: %w", err)
	}
	if !secret.Enabled() {
		return nil, ErrMFARequired
	}
	if !s.mfaProvider.ValidateCode(secret.Secret, input.Code) {
		metrics.RecordLogin("mfa", "failure")
		s.security.log(ctx, &user.ID, input.IPAddress, entity.MFAFailed, nil)
		return nil, ErrInvalidMFACode
	}

	result, err := s.sessions.Start(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin("mfa", "success")
	s.security.log(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, map[string]any{"method": "password", "mfa": true})
	return result, nil
}

// RequestPasswordReset never reveals whether the address exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.Email == nil || !user.IsActive {
		return nil
	}

	token, err := s.createVerificationToken(ctx, user.ID, entity.PasswordReset, s.resetTokenTTL())
	if err != nil {
		return err
	}
	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordResetEmail(ctx, *user.Email, token); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("password reset email failed")
		}
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return ErrInvalidInput
	}
	if err := s.checkPassword(ctx, newPassword); err != nil {
		return err
	}

	now := clockNow(s.clock)
	verification, err := s.verifications.FindValid(ctx, utils.HashToken(token), entity.PasswordReset, now)
	if err != nil {
		return fmt.Errorf("find reset token: %w", err)
	}
	if verification == nil {
		return ErrInvalidToken
	}
	won, err := s.verifications.MarkUsed(ctx, verification.ID, now)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !won {
		return ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, verification.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = &hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if err := s.sessions.RevokeUser(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.security.log(ctx, &user.ID, nil, entity.Reset, nil)
	return nil
}

// EnableMFA stores a fresh, not yet confirmed secret and returns the
// otpauth URL for it. Fans cannot enrol.
func (s *AuthService) EnableMFA(ctx context.Context, p Principal) (string, error) {
	if s.mfaProvider == nil || s.mfaSecrets == nil {
		return "", ErrMFANotConfigured
	}
	if !isStaff(p.Role) {
		return "", ErrForbidden
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", ErrNotFound
	}

	account := accountName(user)
	secret, err := s.mfaProvider.GenerateSecret(account)
	if err != nil {
		return "", err
	}
	if err := s.mfaSecrets.Upsert(ctx, &entity.MFASecret{UserID: user.ID, Secret: secret}); err != nil {
		return "", fmt.Errorf("store mfa secret: %w", err)
	}

	issuer := s.config.MFAIssuer
	if strings.TrimSpace(issuer) == "" {
		issuer = defaultMFAIssuer
	}
	return s.mfaProvider.QRCodeURL(account, issuer, secret)
}

// VerifyMFA confirms enrolment with a first valid code.
func (s *AuthService) VerifyMFA(ctx context.Context, p Principal, code string) error {
	if s.mfaProvider == nil || s.mfaSecrets == nil {
		return ErrMFANotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	secret, err := s.mfaSecrets.FindByUserID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("find mfa secret: %w", err)
	}
	if secret == nil {
		return ErrMFARequired
	}
	if !s.mfaProvider.ValidateCode(secret.Secret, code) {
		s.security.log(ctx, &p.UserID, p.IPAddress, entity.MFAFailed, map[string]any{"stage": "enrol"})
		return ErrInvalidMFACode
	}

	now := clockNow(s.clock)
	secret.EnabledAt = &now
	if err := s.mfaSecrets.Upsert(ctx, secret); err != nil {
		return fmt.Errorf("store mfa secret: %w", err)
	}
	return nil
}

func (s *AuthService) DisableMFA(ctx context.Context, p Principal) error {
	if s.mfaSecrets == nil {
		return nil
	}
	return s.mfaSecrets.Disable(ctx, p.UserID)
}

func (s *AuthService) Me(ctx context.Context, p Principal) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Activity returns the caller's most recent security events.
func (s *AuthService) Activity(ctx context.Context, p Principal, limit int) ([]entity.SecurityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	logs, err := s.securityLogs.ListByUser(ctx, p.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list security logs: %w", err)
	}
	return logs, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID *uuid.UUID, ipAddress *string, email string) {
	metrics.RecordLogin("password", "failure")
	s.security.log(ctx, userID, ipAddress, entity.LoginFailed, map[string]any{"email": email})
}

// checkPassword applies the platform password policy kept in the global
// settings document.
func (s *AuthService) checkPassword(ctx context.Context, password string) error {
	policy := settings.Defaults().Security.PasswordPolicy
	if s.settings != nil {
		doc, err := s.settings.Get(ctx, settings.GlobalTenant)
		if err != nil {
			return err
		}
		policy = doc.Security.PasswordPolicy
	}

	if len([]rune(password)) < policy.MinLength {
		return ErrWeakPassword
	}
	var upper, number, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if (policy.RequireUppercase && !upper) || (policy.RequireNumbers && !number) || (policy.RequireSymbols && !symbol) {
		return ErrWeakPassword
	}
	return nil
}

func (s *AuthService) createVerificationToken(
	ctx context.Context,
	userID uuid.UUID,
	typeValue entity.VerificationType,
	ttl time.Duration,
) (string, error) {
	rawToken, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}

	verification := &entity.VerificationToken{
		UserID:    userID,
		TokenHash: utils.HashToken(rawToken),
		Type:      typeValue,
		ExpiresAt: clockNow(s.clock).Add(ttl),
	}
	if err := s.verifications.Create(ctx, verification); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}
	return rawToken, nil
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return 30 * time.Minute
}

func isStaff(role rbac.Role) bool {
	switch rbac.ParseRole(string(role)) {
	case rbac.RoleTorcedor, rbac.RoleSocioTorcedor:
		return false
	}
	return true
}

func accountName(user *entity.User) string {
	if user.Email != nil {
		return *user.Email
	}
	if user.Phone != nil {
		return *user.Phone
	}
	return user.ID.String()
}
