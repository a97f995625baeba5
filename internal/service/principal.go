package service

import (
	"time"

	"placar/internal/rbac"
	"placar/internal/settings"
	"placar/internal/utils"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of one request, built from a
// verified access token.
type Principal struct {
	UserID      uuid.UUID
	Role        rbac.Role
	TenantID    string
	LeagueID    string
	IsSocio     bool
	Permissions []rbac.Permission
	// SessionID is uuid.Nil for tokens that were never tied to a stored
	// session.
	SessionID uuid.UUID
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	IPAddress *string
	UserAgent *string
}

// PrincipalFromClaims maps verified claims. The role goes through alias
// resolution; permissions are recomputed from the role, so a token can
// never carry more than its role grants.
func PrincipalFromClaims(claims *utils.AccessClaims, rawToken string) (Principal, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	sessionID := uuid.Nil
	if claims.SessionID != "" {
		sessionID, err = uuid.Parse(claims.SessionID)
		if err != nil {
			return Principal{}, ErrInvalidToken
		}
	}
	role := rbac.ParseRole(claims.Role)
	p := Principal{
		UserID:      userID,
		Role:        role,
		TenantID:    claims.TenantID,
		LeagueID:    claims.LeagueID,
		IsSocio:     claims.IsSocio,
		Permissions: rbac.PermissionsFor(role),
		SessionID:   sessionID,
		TokenHash:   utils.HashToken(rawToken),
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (p Principal) Can(permission rbac.Permission) bool {
	for _, granted := range p.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// ResolveTenant maps the caller to the tenant whose settings it works on.
// The result depends only on role and identity, never on request input.
func ResolveTenant(p Principal) string {
	switch p.Role {
	case rbac.RoleSuperAdmin:
		return settings.GlobalTenant
	case rbac.RoleOrganizadorLiga:
		if p.LeagueID != "" {
			return p.LeagueID
		}
		return settings.GlobalTenant
	}
	if p.TenantID != "" {
		return p.TenantID
	}
	return settings.GlobalTenant
}
