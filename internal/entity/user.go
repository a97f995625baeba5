package entity

import (
	"time"

	"placar/internal/rbac"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex"`
	Phone        *string   `gorm:"type:varchar(15);uniqueIndex"`
	PasswordHash *string   `gorm:"type:text"`
	Role         rbac.Role `gorm:"type:varchar(32);default:'torcedor';not null"`
	IsSocio      bool      `gorm:"default:false;not null"`
	TeamID       string    `gorm:"type:varchar(64);index;not null"`
	LeagueID     *string   `gorm:"type:varchar(64);index"`
	IsActive     bool      `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions  []Session
	MFASecret *MFASecret
}

// CanonicalRole resolves legacy aliases stored in older rows.
func (u User) CanonicalRole() rbac.Role {
	return rbac.ParseRole(string(u.Role))
}
