package entity

import (
	"time"

	"github.com/google/uuid"
)

type OTPCode struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Phone     string    `gorm:"type:varchar(15);not null;index"`
	Code      string    `gorm:"type:varchar(6);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Verified  bool      `gorm:"default:false;not null"`

	CreatedAt time.Time
}
