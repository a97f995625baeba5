package service

import (
	"context"
	"fmt"
	"time"

	"placar/internal/entity"
	"placar/internal/metrics"
	"placar/internal/rbac"
	"placar/internal/repository"
	"placar/internal/utils"

	"github.com/google/uuid"
)

// CurrentSessionID marks the synthetic entry List adds for a caller whose
// token has no stored session.
const CurrentSessionID = "current"

type SessionView struct {
	ID        string
	UserID    uuid.UUID
	IPAddress *string
	UserAgent *string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsCurrent bool
}

// SessionService is the session registry: it records logins, lists the
// active ones and deactivates them. Rows are never deleted.
type SessionService struct {
	sessions     repository.SessionRepository
	accessTokens AccessTokenIssuer
	security     securityLogger
	clock        Clock
}

func NewSessionService(
	sessions repository.SessionRepository,
	accessTokens AccessTokenIssuer,
	securityLogs repository.SecurityLogRepository,
	clock Clock,
) *SessionService {
	return &SessionService{
		sessions:     sessions,
		accessTokens: accessTokens,
		security:     securityLogger{repo: securityLogs},
		clock:        clock,
	}
}

// Start persists a new active session for user and issues its token.
func (s *SessionService) Start(ctx context.Context, user *entity.User, ipAddress, userAgent *string) (*LoginResult, error) {
	sessionID := uuid.New()
	token, expiresAt, err := s.accessTokens.IssueAccessToken(*user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	session := &entity.Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: utils.HashToken(token),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedAt: clockNow(s.clock),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
		SessionID: sessionID,
	}, nil
}

// Check rejects principals whose stored session has been deactivated.
// Tokens that never had a stored session pass.
func (s *SessionService) Check(ctx context.Context, p Principal) error {
	if p.SessionID == uuid.Nil {
		return nil
	}
	session, err := s.sessions.FindByID(ctx, p.SessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if session == nil || !session.IsActive || session.UserID != p.UserID {
		return ErrInvalidToken
	}
	return nil
}

func (s *SessionService) List(ctx context.Context, p Principal) ([]SessionView, error) {
	sessions, err := s.sessions.ListActive(ctx, scopeFor(p), clockNow(s.clock))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	views := make([]SessionView, 0, len(sessions)+1)
	sawCurrent := false
	for _, session := range sessions {
		current := session.TokenHash == p.TokenHash
		sawCurrent = sawCurrent || current
		views = append(views, SessionView{
			ID:        session.ID.String(),
			UserID:    session.UserID,
			IPAddress: session.IPAddress,
			UserAgent: session.UserAgent,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			IsCurrent: current,
		})
	}
	if !sawCurrent {
		views = append(views, SessionView{
			ID:        CurrentSessionID,
			UserID:    p.UserID,
			IPAddress: p.IPAddress,
			UserAgent: p.UserAgent,
			CreatedAt: p.IssuedAt,
			ExpiresAt: p.ExpiresAt,
			IsCurrent: true,
		})
	}
	return views, nil
}

// Kill deactivates one session inside the caller's scope. Unknown or
// out-of-scope ids are a no-op.
func (s *SessionService) Kill(ctx context.Context, p Principal, id string) error {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	n, err := s.sessions.Deactivate(ctx, scopeFor(p), sessionID)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	if n > 0 {
		metrics.RecordSessionsRevoked(n)
		s.security.log(ctx, &p.UserID, p.IPAddress, entity.SessionRevoked, map[string]any{"session_id": id})
	}
	return nil
}

func (s *SessionService) KillAll(ctx context.Context, p Principal) error {
	n, err := s.sessions.DeactivateAll(ctx, scopeFor(p))
	if err != nil {
		return fmt.Errorf("deactivate sessions: %w", err)
	}
	metrics.RecordSessionsRevoked(n)
	s.security.log(ctx, &p.UserID, p.IPAddress, entity.SessionRevoked, map[string]any{"scope": "all", "count": n})
	return nil
}

// Logout ends the caller's own current session.
func (s *SessionService) Logout(ctx context.Context, p Principal) error {
	if p.SessionID != uuid.Nil {
		self := p.UserID
		n, err := s.sessions.Deactivate(ctx, repository.SessionScope{UserID: &self}, p.SessionID)
		if err != nil {
			return fmt.Errorf("deactivate session: %w", err)
		}
		metrics.RecordSessionsRevoked(n)
	}
	s.security.log(ctx, &p.UserID, p.IPAddress, entity.Logout, nil)
	return nil
}

// LogoutAll ends every session of the caller, whatever their role.
func (s *SessionService) LogoutAll(ctx context.Context, p Principal) error {
	self := p.UserID
	n, err := s.sessions.DeactivateAll(ctx, repository.SessionScope{UserID: &self})
	if err != nil {
		return fmt.Errorf("deactivate sessions: %w", err)
	}
	metrics.RecordSessionsRevoked(n)
	s.security.log(ctx, &p.UserID, p.IPAddress, entity.SessionRevoked, map[string]any{"scope": "self"})
	return nil
}

// RevokeUser ends every session of userID. Used after a password reset.
func (s *SessionService) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.sessions.DeactivateAll(ctx, repository.SessionScope{UserID: &userID})
	return err
}

// scopeFor: super admins see every session, holders of sessions:manage see
// their team, everybody else only themselves.
func scopeFor(p Principal) repository.SessionScope {
	if p.Role == rbac.RoleSuperAdmin {
		return repository.SessionScope{}
	}
	if p.Can(rbac.PermSessionsManage) && p.TenantID != "" {
		team := p.TenantID
		return repository.SessionScope{TeamID: &team}
	}
	self := p.UserID
	return repository.SessionScope{UserID: &self}
}
