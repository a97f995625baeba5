package repository

import (
	"context"
	"errors"
	"time"

	"placar/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionScope narrows which sessions an operation may see. A zero scope
// covers every session.
type SessionScope struct {
	UserID *uuid.UUID
	TeamID *string
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	ListActive(ctx context.Context, scope SessionScope, now time.Time) ([]entity.Session, error)
	Deactivate(ctx context.Context, scope SessionScope, id uuid.UUID) (int64, error)
	DeactivateAll(ctx context.Context, scope SessionScope) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListActive(ctx context.Context, scope SessionScope, now time.Time) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.scoped(ctx, scope).
		Where("is_active = true AND expires_at > ?", now).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, scope SessionScope, id uuid.UUID) (int64, error) {
	result := r.scoped(ctx, scope).
		Model(&entity.Session{}).
		Where("id = ? AND is_active = true", id).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeactivateAll(ctx context.Context, scope SessionScope) (int64, error) {
	result := r.scoped(ctx, scope).
		Model(&entity.Session{}).
		Where("is_active = true").
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) scoped(ctx context.Context, scope SessionScope) *gorm.DB {
	query := r.db.WithContext(ctx)
	if scope.UserID != nil {
		query = query.Where("user_id = ?", *scope.UserID)
	}
	if scope.TeamID != nil {
		members := r.db.Model(&entity.User{}).Select("id").Where("team_id = ?", *scope.TeamID)
		query = query.Where("user_id IN (?)", members)
	}
	return query
}
