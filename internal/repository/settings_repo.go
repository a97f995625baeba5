package repository

import (
	"context"
	"errors"

	"placar/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Find(ctx context.Context, tenantID string) (*entity.TenantSettings, error)
	// CreateIfAbsent inserts row unless the tenant already has a document.
	CreateIfAbsent(ctx context.Context, row *entity.TenantSettings) error
	// Save upserts row and appends logs in the same transaction.
	Save(ctx context.Context, row *entity.TenantSettings, logs []entity.SettingsLog) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Find(ctx context.Context, tenantID string) (*entity.TenantSettings, error) {
	var row entity.TenantSettings
	err := r.db.WithContext(ctx).Where("id = ?", tenantID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *settingsRepository) CreateIfAbsent(ctx context.Context, row *entity.TenantSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *settingsRepository) Save(ctx context.Context, row *entity.TenantSettings, logs []entity.SettingsLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		return NewSettingsLogRepository(tx).Append(ctx, logs)
	})
}
