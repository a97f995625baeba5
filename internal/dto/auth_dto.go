package dto

import (
	"encoding/json"
	"time"

	"placar/internal/entity"
	"placar/internal/rbac"
)

type OTPRequestRequest struct {
	Phone string `json:"phone" validate:"required,max=32"`
}

type OTPRequestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DevCode string `json:"devCode,omitempty"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone" validate:"required,max=32"`
	Code  string `json:"code" validate:"required,max=16"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginMFARequest struct {
	MFAToken string `json:"mfaToken" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

type LoginResponse struct {
	User              *UserResponse `json:"user,omitempty"`
	Token             string        `json:"token,omitempty"`
	ExpiresAt         *time.Time    `json:"expiresAt,omitempty"`
	MFARequired       bool          `json:"mfaRequired,omitempty"`
	MFAToken          string        `json:"mfaToken,omitempty"`
	MFATokenExpiresIn int64         `json:"mfaTokenExpiresIn,omitempty"`
}

type PasswordForgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=128"`
}

type MFAEnableResponse struct {
	QRCode string `json:"qrCode"`
}

type MFAVerifyRequest struct {
	Code string `json:"code" validate:"required"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Role        string    `json:"role"`
	IsSocio     bool      `json:"isSocio"`
	TeamID      string    `json:"teamId"`
	LeagueID    *string   `json:"leagueId,omitempty"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserResponseFromEntity reports the canonical role and the permissions it
// resolves to.
func UserResponseFromEntity(user *entity.User) UserResponse {
	role := user.CanonicalRole()
	return UserResponse{
		ID:          user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        string(role),
		IsSocio:     user.IsSocio,
		TeamID:      user.TeamID,
		LeagueID:    user.LeagueID,
		Permissions: rbac.Strings(rbac.PermissionsFor(role)),
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
	}
}

type SecurityEventResponse struct {
	Action    string          `json:"action"`
	IPAddress *string         `json:"ipAddress,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func SecurityEventsFromEntities(logs []entity.SecurityLog) []SecurityEventResponse {
	responses := make([]SecurityEventResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, SecurityEventResponse{
			Action:    string(log.Action),
			IPAddress: log.IPAddress,
			Metadata:  json.RawMessage(log.Metadata),
			CreatedAt: log.CreatedAt,
		})
	}
	return responses
}
