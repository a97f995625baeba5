package service

import (
	"context"
	"encoding/json"
	"fmt"

	"placar/internal/entity"
	"placar/internal/metrics"
	"placar/internal/rbac"
	"placar/internal/repository"
	"placar/internal/settings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Actor identifies who changed a settings document.
type Actor struct {
	UserID uuid.UUID
	Email  *string
}

// SettingsService owns the per-tenant configuration document and its audit
// trail.
type SettingsService struct {
	settings  repository.SettingsRepository
	logs      repository.SettingsLogRepository
	users     repository.UserRepository
	validator *settings.Validator
	clock     Clock
}

func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	logs repository.SettingsLogRepository,
	users repository.UserRepository,
	validator *settings.Validator,
	clock Clock,
) *SettingsService {
	if validator == nil {
		validator = settings.NewValidator(nil)
	}
	return &SettingsService{
		settings:  settingsRepo,
		logs:      logs,
		users:     users,
		validator: validator,
		clock:     clock,
	}
}

// Get returns the tenant's document, persisting the defaults on first read.
func (s *SettingsService) Get(ctx context.Context, tenantID string) (settings.Document, error) {
	row, err := s.load(ctx, tenantID)
	if err != nil {
		return settings.Document{}, err
	}
	return row.Document(), nil
}

// Update validates patch, merges it and saves the result. With a non-nil
// actor one audit entry per touched module is written in the same
// transaction.
func (s *SettingsService) Update(ctx context.Context, tenantID string, patch settings.Patch, actor *Actor) (settings.Document, error) {
	if fields := s.validator.Validate(patch); len(fields) > 0 {
		metrics.RecordSettingsUpdate("invalid")
		return settings.Document{}, &ValidationError{Fields: fields}
	}

	row, err := s.load(ctx, tenantID)
	if err != nil {
		return settings.Document{}, err
	}
	current := row.Document()
	next, touched, err := settings.Apply(current, patch)
	if err != nil {
		return settings.Document{}, fmt.Errorf("apply settings patch: %w", err)
	}
	if fields := s.validator.ValidateSections(next, touched); len(fields) > 0 {
		metrics.RecordSettingsUpdate("invalid")
		return settings.Document{}, &ValidationError{Fields: fields}
	}

	now := clockNow(s.clock)
	var logs []entity.SettingsLog
	if actor != nil {
		logs = make([]entity.SettingsLog, 0, len(touched))
		for _, m := range touched {
			oldValue, err := json.Marshal(current.Section(m))
			if err != nil {
				return settings.Document{}, err
			}
			newValue, err := json.Marshal(next.Section(m))
			if err != nil {
				return settings.Document{}, err
			}
			userID := actor.UserID
			logs = append(logs, entity.SettingsLog{
				TenantID:  tenantID,
				UserID:    &userID,
				UserEmail: actor.Email,
				Module:    string(m),
				Action:    entity.SettingsActionUpdate,
				OldValue:  datatypes.JSON(oldValue),
				NewValue:  datatypes.JSON(newValue),
				CreatedAt: now,
			})
		}
		updatedBy := actor.UserID.String()
		row.UpdatedBy = &updatedBy
	}

	row.SetDocument(next)
	row.UpdatedAt = now
	if err := s.settings.Save(ctx, row, logs); err != nil {
		return settings.Document{}, fmt.Errorf("save settings: %w", err)
	}
	metrics.RecordSettingsUpdate("applied")
	return next, nil
}

// UpdateAs is Update for an authenticated caller: the tenant comes from the
// caller's identity and settings:manage is required.
func (s *SettingsService) UpdateAs(ctx context.Context, p Principal, patch settings.Patch) (settings.Document, error) {
	if !p.Can(rbac.PermSettingsManage) {
		metrics.RecordSettingsUpdate("forbidden")
		return settings.Document{}, ErrForbidden
	}
	actor := &Actor{UserID: p.UserID}
	if s.users != nil {
		user, err := s.users.FindByID(ctx, p.UserID)
		if err != nil {
			return settings.Document{}, fmt.Errorf("find actor: %w", err)
		}
		if user != nil {
			actor.Email = user.Email
		}
	}
	return s.Update(ctx, ResolveTenant(p), patch, actor)
}

func (s *SettingsService) Logs(ctx context.Context, tenantID string, limit, offset int) ([]entity.SettingsLog, error) {
	logs, err := s.logs.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settings logs: %w", err)
	}
	return logs, nil
}

func (s *SettingsService) load(ctx context.Context, tenantID string) (*entity.TenantSettings, error) {
	row, err := s.settings.Find(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	if row != nil {
		return row, nil
	}

	defaults := entity.NewTenantSettings(tenantID, settings.Defaults())
	defaults.UpdatedAt = clockNow(s.clock)
	if err := s.settings.CreateIfAbsent(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	// Another request may have won the insert; read back whichever row stuck.
	row, err = s.settings.Find(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}
