package service

import (
	"context"
	"fmt"

	"placar/internal/entity"
	"placar/internal/rbac"
	"placar/internal/repository"
)

type ConsentService struct {
	consents repository.ConsentRepository
	clock    Clock
}

func NewConsentService(consents repository.ConsentRepository, clock Clock) *ConsentService {
	return &ConsentService{consents: consents, clock: clock}
}

// Record appends a consent decision for the caller. Earlier decisions are
// kept; the newest row wins.
func (s *ConsentService) Record(ctx context.Context, p Principal, consentType entity.ConsentType, accepted bool) (*entity.PrivacyConsent, error) {
	if !consentType.Valid() {
		return nil, ErrInvalidInput
	}
	consent := &entity.PrivacyConsent{
		UserID:      p.UserID,
		ConsentType: consentType,
		Accepted:    accepted,
		AcceptedAt:  clockNow(s.clock),
		IPAddress:   p.IPAddress,
	}
	if err := s.consents.Create(ctx, consent); err != nil {
		return nil, fmt.Errorf("record consent: %w", err)
	}
	return consent, nil
}

// List shows consent records to tenant administrators: super admins see
// every tenant, team admins only their own users.
func (s *ConsentService) List(ctx context.Context, p Principal, limit, offset int) ([]entity.PrivacyConsent, error) {
	if !p.Can(rbac.PermConsentsView) {
		return nil, ErrForbidden
	}
	var teamID *string
	if p.Role != rbac.RoleSuperAdmin {
		team := p.TenantID
		teamID = &team
	}
	consents, err := s.consents.List(ctx, teamID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	return consents, nil
}
