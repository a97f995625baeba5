package repository

import (
	"context"

	"placar/internal/entity"

	"gorm.io/gorm"
)

type SettingsLogRepository interface {
	Append(ctx context.Context, logs []entity.SettingsLog) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]entity.SettingsLog, error)
}

type settingsLogRepository struct {
	db *gorm.DB
}

func NewSettingsLogRepository(db *gorm.DB) SettingsLogRepository {
	return &settingsLogRepository{db: db}
}

func (r *settingsLogRepository) Append(ctx context.Context, logs []entity.SettingsLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *settingsLogRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]entity.SettingsLog, error) {
	var logs []entity.SettingsLog
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
