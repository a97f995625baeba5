package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	LoginSuccess   SecurityAction = "login_success"
	LoginFailed    SecurityAction = "login_failed"
	OTPRequested   SecurityAction = "otp_requested"
	OTPFailed      SecurityAction = "otp_failed"
	UserEnrolled   SecurityAction = "user_enrolled"
	Logout         SecurityAction = "logout"
	SessionRevoked SecurityAction = "session_revoked"
	Reset          SecurityAction = "password_reset"
	MFAFailed      SecurityAction = "mfa_failed"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(32);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
