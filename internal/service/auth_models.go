package service

import (
	"time"

	"placar/internal/entity"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	IPAddress *string
	UserAgent *string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

type LoginMFAInput struct {
	MFAToken  string
	Code      string
	IPAddress *string
	UserAgent *string
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
	SessionID uuid.UUID

	MFARequired       bool
	MFAToken          string
	MFATokenExpiresIn int64
}

type OTPRequestResult struct {
	// DevCode is only filled outside production.
	DevCode string
}
