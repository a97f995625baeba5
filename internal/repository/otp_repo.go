package repository

import (
	"context"
	"errors"
	"time"

	"placar/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPRepository interface {
	// Replace deletes every code stored for the phone and inserts code,
	// atomically.
	Replace(ctx context.Context, code *entity.OTPCode) error
	FindActive(ctx context.Context, phone string, code string, now time.Time) (*entity.OTPCode, error)
	// MarkVerified flips verified only if it is still false. It reports
	// whether this call won.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Replace(ctx context.Context, code *entity.OTPCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone = ?", code.Phone).Delete(&entity.OTPCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *otpRepository) FindActive(ctx context.Context, phone string, code string, now time.Time) (*entity.OTPCode, error) {
	var otp entity.OTPCode
	err := r.db.WithContext(ctx).
		Where(`
			phone = ? AND
			code = ? AND
			verified = false AND
			expires_at > ?
		`, phone, code, now).
		First(&otp).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("id = ? AND verified = false", id).
		Update("verified", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
