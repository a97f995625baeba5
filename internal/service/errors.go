package service

import (
	"errors"
	"strings"
)

var (
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrForbidden              = errors.New("forbidden")
	ErrValidationFailed       = errors.New("validation failed")
	ErrInvalidOrExpiredCode   = errors.New("invalid or expired code")
	ErrInvalidPhone           = errors.New("invalid phone")
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email or phone already registered")
	ErrWeakPassword           = errors.New("password does not meet policy")
	ErrOTPDisabled            = errors.New("otp login disabled")
	ErrMFARequired            = errors.New("mfa required")
	ErrInvalidMFACode         = errors.New("invalid mfa code")
	ErrMFANotConfigured       = errors.New("mfa not configured")
)

// ValidationError carries every offending settings field path.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
