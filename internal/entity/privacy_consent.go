package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConsentType string

const (
	ConsentTermsOfUse    ConsentType = "terms_of_use"
	ConsentPrivacyPolicy ConsentType = "privacy_policy"
	ConsentMarketing     ConsentType = "marketing"
	ConsentImageRights   ConsentType = "image_rights"
)

func (t ConsentType) Valid() bool {
	switch t {
	case ConsentTermsOfUse, ConsentPrivacyPolicy, ConsentMarketing, ConsentImageRights:
		return true
	}
	return false
}

// PrivacyConsent rows are append-only; a withdrawal is a new row with
// Accepted=false.
type PrivacyConsent struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	ConsentType ConsentType `gorm:"type:varchar(32);not null"`
	Accepted    bool        `gorm:"not null"`
	AcceptedAt  time.Time   `gorm:"not null"`
	IPAddress   *string     `gorm:"type:varchar(45)"`

	CreatedAt time.Time
}
