package entity

import (
	"time"

	"github.com/google/uuid"
)

type VerificationType string

const PasswordReset VerificationType = "password_reset"

// VerificationToken is a single-use emailed token. Only its hash is stored.
type VerificationToken struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string           `gorm:"type:text;not null;uniqueIndex"`
	Type      VerificationType `gorm:"type:varchar(32);not null"`

	ExpiresAt time.Time
	UsedAt    *time.Time

	CreatedAt time.Time
}
