package repository

import (
	"context"

	"placar/internal/entity"

	"gorm.io/gorm"
)

type ConsentRepository interface {
	Create(ctx context.Context, consent *entity.PrivacyConsent) error
	// List returns consents newest first; a non-nil teamID restricts the
	// result to users of that team.
	List(ctx context.Context, teamID *string, limit, offset int) ([]entity.PrivacyConsent, error)
}

type consentRepository struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Create(ctx context.Context, consent *entity.PrivacyConsent) error {
	return r.db.WithContext(ctx).Create(consent).Error
}

func (r *consentRepository) List(ctx context.Context, teamID *string, limit, offset int) ([]entity.PrivacyConsent, error) {
	var consents []entity.PrivacyConsent
	query := r.db.WithContext(ctx).Order("accepted_at DESC")
	if teamID != nil {
		members := r.db.Model(&entity.User{}).Select("id").Where("team_id = ?", *teamID)
		query = query.Where("user_id IN (?)", members)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&consents).Error; err != nil {
		return nil, err
	}
	return consents, nil
}
