package service

import (
	"time"

	"placar/internal/entity"
	"placar/internal/rbac"
	"placar/internal/utils"

	"github.com/google/uuid"
)

type AccessTokenIssuer interface {
	IssueAccessToken(user entity.User, sessionID uuid.UUID) (string, time.Time, error)
}

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(user entity.User, sessionID uuid.UUID) (string, time.Time, error) {
	if j.Manager == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	role := user.CanonicalRole()
	subject := utils.TokenSubject{
		UserID:      user.ID.String(),
		Role:        string(role),
		TenantID:    user.TeamID,
		IsSocio:     user.IsSocio,
		Permissions: rbac.Strings(rbac.PermissionsFor(role)),
	}
	if user.LeagueID != nil {
		subject.LeagueID = *user.LeagueID
	}
	if sessionID != uuid.Nil {
		subject.SessionID = sessionID.String()
	}
	return j.Manager.IssueAccessToken(subject)
}
