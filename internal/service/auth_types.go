package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	Production      bool
	SessionTTL      time.Duration
	OTPTTL          time.Duration
	ResetTokenTTL   time.Duration
	MFATokenTTL     time.Duration
	MFAIssuer       string
	DefaultTenantID string
	DispatchTimeout time.Duration
}

type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
}

// CodeSender delivers an OTP to a phone. Delivery happens outside the
// request that issued the code.
type CodeSender interface {
	SendCode(ctx context.Context, phone string, code string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type MFATokenIssuer interface {
	IssueMFAToken(userID uuid.UUID) (string, time.Duration, error)
	ParseMFAToken(token string) (uuid.UUID, error)
}

type MFAProvider interface {
	GenerateSecret(accountName string) (string, error)
	QRCodeURL(accountName string, issuer string, secret string) (string, error)
	ValidateCode(secret string, code string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func clockNow(clock Clock) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock.Now()
}
