package entity

import (
	"time"

	"github.com/google/uuid"
)

// MFASecret holds a staff member's TOTP seed. EnabledAt stays nil until the
// first code is confirmed.
type MFASecret struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Secret    string `gorm:"type:text;not null"`
	EnabledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *MFASecret) Enabled() bool {
	return s != nil && s.EnabledAt != nil
}
