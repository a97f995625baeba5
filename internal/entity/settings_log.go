package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const SettingsActionUpdate = "UPDATE"

type SettingsLog struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID string    `gorm:"type:varchar(64);not null;index"`

	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	UserEmail *string    `gorm:"type:varchar(255)"`

	Module   string         `gorm:"type:varchar(32);not null"`
	Action   string         `gorm:"type:varchar(16);not null"`
	OldValue datatypes.JSON `gorm:"type:jsonb"`
	NewValue datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"index"`
}
