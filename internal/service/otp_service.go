package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"placar/internal/entity"
	"placar/internal/metrics"
	"placar/internal/rbac"
	"placar/internal/repository"
	"placar/internal/settings"
	"placar/internal/utils"

	"github.com/sirupsen/logrus"
)

const (
	minPhoneDigits = 10
	// E.164 caps a full number at 15 digits.
	maxPhoneDigits = 15
	otpCodeSpace   = 1000000
)

// OTPService implements phone login with one-time codes. Each phone has at
// most one live code; a new request supersedes the previous one.
type OTPService struct {
	otps     repository.OTPRepository
	users    repository.UserRepository
	sessions *SessionService
	settings *SettingsService
	security securityLogger

	codeSender CodeSender
	clock      Clock
	config     AuthConfig
	logger     logrus.FieldLogger
}

func NewOTPService(
	otps repository.OTPRepository,
	users repository.UserRepository,
	sessions *SessionService,
	settingsService *SettingsService,
	securityLogs repository.SecurityLogRepository,
	codeSender CodeSender,
	clock Clock,
	config AuthConfig,
	logger logrus.FieldLogger,
) *OTPService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OTPService{
		otps:       otps,
		users:      users,
		sessions:   sessions,
		settings:   settingsService,
		security:   securityLogger{repo: securityLogs, logger: logger},
		codeSender: codeSender,
		clock:      clock,
		config:     config,
		logger:     logger,
	}
}

func (s *OTPService) RequestCode(ctx context.Context, phone string, ipAddress *string) (*OTPRequestResult, error) {
	digits := utils.NormalizePhone(phone)
	if !validPhoneLength(digits) {
		return nil, ErrInvalidPhone
	}
	if err := s.ensureEnabled(ctx); err != nil {
		return nil, err
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	otp := &entity.OTPCode{
		Phone:     digits,
		Code:      code,
		ExpiresAt: clockNow(s.clock).Add(s.otpTTL()),
	}
	if err := s.otps.Replace(ctx, otp); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}
	metrics.RecordOTP("issued")
	s.security.log(ctx, nil, ipAddress, entity.OTPRequested, map[string]any{"phone_suffix": lastDigits(digits, 4)})

	if !s.config.Production {
		return &OTPRequestResult{DevCode: code}, nil
	}
	s.dispatch(digits, code)
	return &OTPRequestResult{}, nil
}

// VerifyCode consumes a live code and logs the phone's owner in, creating a
// torcedor account on first use.
func (s *OTPService) VerifyCode(ctx context.Context, phone, code string, ipAddress, userAgent *string) (*LoginResult, error) {
	digits := utils.NormalizePhone(phone)
	if !validPhoneLength(digits) || code == "" {
		metrics.RecordOTP("rejected")
		return nil, ErrInvalidOrExpiredCode
	}
	// Codes issued before phone login was switched off must not work either.
	if err := s.ensureEnabled(ctx); err != nil {
		return nil, err
	}

	otp, err := s.otps.FindActive(ctx, digits, code, clockNow(s.clock))
	if err != nil {
		return nil, fmt.Errorf("find code: %w", err)
	}
	if otp == nil {
		s.reject(ctx, digits, ipAddress)
		return nil, ErrInvalidOrExpiredCode
	}
	won, err := s.otps.MarkVerified(ctx, otp.ID)
	if err != nil {
		return nil, fmt.Errorf("mark code verified: %w", err)
	}
	if !won {
		s.reject(ctx, digits, ipAddress)
		return nil, ErrInvalidOrExpiredCode
	}

	user, err := s.findOrEnroll(ctx, digits, ipAddress)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		metrics.RecordLogin("otp", "failure")
		return nil, ErrForbidden
	}

	result, err := s.sessions.Start(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}
	metrics.RecordOTP("verified")
	metrics.RecordLogin("otp", "success")
	s.security.log(ctx, &user.ID, ipAddress, entity.LoginSuccess, map[string]any{"method": "otp"})
	return result, nil
}

func (s *OTPService) findOrEnroll(ctx context.Context, digits string, ipAddress *string) (*entity.User, error) {
	user, err := s.users.FindByPhone(ctx, digits)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	phone := digits
	user = &entity.User{
		Name:     "Torcedor " + lastDigits(digits, 4),
		Phone:    &phone,
		Role:     rbac.RoleTorcedor,
		IsSocio:  false,
		TeamID:   s.config.DefaultTenantID,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Concurrent first login for the same phone.
			return s.users.FindByPhone(ctx, digits)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.security.log(ctx, &user.ID, ipAddress, entity.UserEnrolled, map[string]any{"method": "otp"})
	return user, nil
}

func (s *OTPService) ensureEnabled(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	doc, err := s.settings.Get(ctx, settings.GlobalTenant)
	if err != nil {
		return err
	}
	if !doc.Security.OTPLoginEnabled {
		return ErrOTPDisabled
	}
	return nil
}

func (s *OTPService) reject(ctx context.Context, digits string, ipAddress *string) {
	metrics.RecordOTP("rejected")
	metrics.RecordLogin("otp", "failure")
	s.security.log(ctx, nil, ipAddress, entity.OTPFailed, map[string]any{"phone_suffix": lastDigits(digits, 4)})
}

// dispatch hands the code to the sender in the background with its own
// deadline, detached from the request context.
func (s *OTPService) dispatch(phone, code string) {
	if s.codeSender == nil {
		s.logger.WithField("phone_suffix", lastDigits(phone, 4)).Warn("no code sender configured, otp not delivered")
		return
	}
	timeout := s.config.DispatchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.codeSender.SendCode(ctx, phone, code); err != nil {
			s.logger.WithError(err).WithField("phone_suffix", lastDigits(phone, 4)).Error("otp delivery failed")
		}
	}()
}

func (s *OTPService) otpTTL() time.Duration {
	if s.config.OTPTTL > 0 {
		return s.config.OTPTTL
	}
	return 5 * time.Minute
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validPhoneLength(digits string) bool {
	return len(digits) >= minPhoneDigits && len(digits) <= maxPhoneDigits
}

func lastDigits(digits string, n int) string {
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
