package entity

import (
	"time"

	"placar/internal/settings"

	"gorm.io/datatypes"
)

type TenantSettings struct {
	ID string `gorm:"type:varchar(64);primaryKey"`

	General       datatypes.JSONType[settings.General]       `gorm:"type:jsonb;not null"`
	Security      datatypes.JSONType[settings.Security]      `gorm:"type:jsonb;not null"`
	Payments      datatypes.JSONType[settings.Payments]      `gorm:"type:jsonb;not null"`
	Store         datatypes.JSONType[settings.Store]         `gorm:"type:jsonb;not null"`
	Leagues       datatypes.JSONType[settings.Leagues]       `gorm:"type:jsonb;not null"`
	Broadcast     datatypes.JSONType[settings.Broadcast]     `gorm:"type:jsonb;not null"`
	Notifications datatypes.JSONType[settings.Notifications] `gorm:"type:jsonb;not null"`
	LGPD          datatypes.JSONType[settings.LGPD]          `gorm:"column:lgpd;type:jsonb;not null"`
	Integrations  datatypes.JSONType[settings.Integrations]  `gorm:"type:jsonb;not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	UpdatedBy *string   `gorm:"type:varchar(64)"`
}

func NewTenantSettings(tenantID string, doc settings.Document) *TenantSettings {
	row := &TenantSettings{ID: tenantID}
	row.SetDocument(doc)
	return row
}

func (t *TenantSettings) Document() settings.Document {
	return settings.Document{
		General:       t.General.Data(),
		Security:      t.Security.Data(),
		Payments:      t.Payments.Data(),
		Store:         t.Store.Data(),
		Leagues:       t.Leagues.Data(),
		Broadcast:     t.Broadcast.Data(),
		Notifications: t.Notifications.Data(),
		LGPD:          t.LGPD.Data(),
		Integrations:  t.Integrations.Data(),
	}
}

func (t *TenantSettings) SetDocument(doc settings.Document) {
	t.General = datatypes.NewJSONType(doc.General)
	t.Security = datatypes.NewJSONType(doc.Security)
	t.Payments = datatypes.NewJSONType(doc.Payments)
	t.Store = datatypes.NewJSONType(doc.Store)
	t.Leagues = datatypes.NewJSONType(doc.Leagues)
	t.Broadcast = datatypes.NewJSONType(doc.Broadcast)
	t.Notifications = datatypes.NewJSONType(doc.Notifications)
	t.LGPD = datatypes.NewJSONType(doc.LGPD)
	t.Integrations = datatypes.NewJSONType(doc.Integrations)
}
