// Package memory provides map-backed implementations of the repository
// interfaces for tests and local experiments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"placar/internal/entity"
	"placar/internal/repository"

	"github.com/google/uuid"
)

// Store shares one set of tables between the repositories so that
// team-scoped queries can see users.
type Store struct {
	mu sync.Mutex

	users        map[uuid.UUID]entity.User
	sessions     map[uuid.UUID]entity.Session
	otps         map[uuid.UUID]entity.OTPCode
	consents     []entity.PrivacyConsent
	settings     map[string]entity.TenantSettings
	settingsLogs []entity.SettingsLog
	tokens       map[uuid.UUID]entity.VerificationToken
	mfaSecrets   map[uuid.UUID]entity.MFASecret
	securityLogs []entity.SecurityLog

	// FailWith, when set, is returned by every write.
	FailWith error
}

func NewStore() *Store {
	return &Store{
		users:      map[uuid.UUID]entity.User{},
		sessions:   map[uuid.UUID]entity.Session{},
		otps:       map[uuid.UUID]entity.OTPCode{},
		settings:   map[string]entity.TenantSettings{},
		tokens:     map[uuid.UUID]entity.VerificationToken{},
		mfaSecrets: map[uuid.UUID]entity.MFASecret{},
	}
}

func (s *Store) Users() repository.UserRepository               { return userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository         { return sessionRepo{s} }
func (s *Store) OTPs() repository.OTPRepository                 { return otpRepo{s} }
func (s *Store) Consents() repository.ConsentRepository         { return consentRepo{s} }
func (s *Store) Settings() repository.SettingsRepository        { return settingsRepo{s} }
func (s *Store) SettingsLogs() repository.SettingsLogRepository { return settingsLogRepo{s} }
func (s *Store) Tokens() repository.VerificationTokenRepository { return tokenRepo{s} }
func (s *Store) MFASecrets() repository.MFASecretRepository     { return mfaRepo{s} }
func (s *Store) SecurityLogs() repository.SecurityLogRepository { return securityLogRepo{s} }

// OTPCount reports how many codes are stored for phone.
func (s *Store) OTPCount(phone string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, code := range s.otps {
		if code.Phone == phone {
			n++
		}
	}
	return n
}

// AllSessions returns every stored session, active or not.
func (s *Store) AllSessions() []entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

func (s *Store) SecurityLogCount(action entity.SecurityAction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, log := range s.securityLogs {
		if log.Action == action {
			n++
		}
	}
	return n
}

func (s *Store) userInTeam(userID uuid.UUID, teamID string) bool {
	user, ok := s.users[userID]
	return ok && user.TeamID == teamID
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	for _, existing := range r.s.users {
		if sameOptional(existing.Email, user.Email) || sameOptional(existing.Phone, user.Phone) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = "torcedor"
	}
	user.IsActive = true
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email != nil && *u.Email == email })
}

func (r userRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (r userRepo) find(match func(entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.IsActive && match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) List(_ context.Context, teamID string, limit, offset int) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.User, 0)
	for _, user := range r.s.users {
		if user.IsActive && (teamID == "" || user.TeamID == teamID) {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r sessionRepo) ListActive(_ context.Context, scope repository.SessionScope, now time.Time) ([]entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Session, 0)
	for _, session := range r.s.sessions {
		if session.IsActive && session.ExpiresAt.After(now) && r.inScope(session, scope) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r sessionRepo) Deactivate(_ context.Context, scope repository.SessionScope, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok || !session.IsActive || !r.inScope(session, scope) {
		return 0, nil
	}
	session.IsActive = false
	r.s.sessions[id] = session
	return 1, nil
}

func (r sessionRepo) DeactivateAll(_ context.Context, scope repository.SessionScope) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, session := range r.s.sessions {
		if session.IsActive && r.inScope(session, scope) {
			session.IsActive = false
			r.s.sessions[id] = session
			n++
		}
	}
	return n, nil
}

func (r sessionRepo) inScope(session entity.Session, scope repository.SessionScope) bool {
	if scope.UserID != nil && session.UserID != *scope.UserID {
		return false
	}
	if scope.TeamID != nil && !r.s.userInTeam(session.UserID, *scope.TeamID) {
		return false
	}
	return true
}

type otpRepo struct{ s *Store }

func (r otpRepo) Replace(_ context.Context, code *entity.OTPCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	for id, existing := range r.s.otps {
		if existing.Phone == code.Phone {
			delete(r.s.otps, id)
		}
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	code.CreatedAt = time.Now()
	r.s.otps[code.ID] = *code
	return nil
}

func (r otpRepo) FindActive(_ context.Context, phone string, code string, now time.Time) (*entity.OTPCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, otp := range r.s.otps {
		if otp.Phone == phone && otp.Code == code && !otp.Verified && otp.ExpiresAt.After(now) {
			found := otp
			return &found, nil
		}
	}
	return nil, nil
}

func (r otpRepo) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	otp, ok := r.s.otps[id]
	if !ok || otp.Verified {
		return false, nil
	}
	otp.Verified = true
	r.s.otps[id] = otp
	return true, nil
}

type consentRepo struct{ s *Store }

func (r consentRepo) Create(_ context.Context, consent *entity.PrivacyConsent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if consent.ID == uuid.Nil {
		consent.ID = uuid.New()
	}
	consent.CreatedAt = time.Now()
	r.s.consents = append(r.s.consents, *consent)
	return nil
}

func (r consentRepo) List(_ context.Context, teamID *string, limit, offset int) ([]entity.PrivacyConsent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.PrivacyConsent, 0)
	for i := len(r.s.consents) - 1; i >= 0; i-- {
		consent := r.s.consents[i]
		if teamID == nil || r.s.userInTeam(consent.UserID, *teamID) {
			out = append(out, consent)
		}
	}
	return page(out, limit, offset), nil
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Find(_ context.Context, tenantID string) (*entity.TenantSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.settings[tenantID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r settingsRepo) CreateIfAbsent(_ context.Context, row *entity.TenantSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.settings[row.ID]; ok {
		return nil
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	r.s.settings[row.ID] = *row
	return nil
}

func (r settingsRepo) Save(_ context.Context, row *entity.TenantSettings, logs []entity.SettingsLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	r.s.settings[row.ID] = *row
	r.s.appendLogs(logs)
	return nil
}

func (s *Store) appendLogs(logs []entity.SettingsLog) {
	for _, log := range logs {
		if log.ID == uuid.Nil {
			log.ID = uuid.New()
		}
		s.settingsLogs = append(s.settingsLogs, log)
	}
}

type settingsLogRepo struct{ s *Store }

func (r settingsLogRepo) Append(_ context.Context, logs []entity.SettingsLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	r.s.appendLogs(logs)
	return nil
}

func (r settingsLogRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]entity.SettingsLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.SettingsLog, 0)
	for i := len(r.s.settingsLogs) - 1; i >= 0; i-- {
		if r.s.settingsLogs[i].TenantID == tenantID {
			out = append(out, r.s.settingsLogs[i])
		}
	}
	return page(out, limit, offset), nil
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, token *entity.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.s.tokens[token.ID] = *token
	return nil
}

func (r tokenRepo) FindValid(_ context.Context, tokenHash string, tokenType entity.VerificationType, now time.Time) (*entity.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.tokens {
		if token.TokenHash == tokenHash && token.Type == tokenType && token.UsedAt == nil && token.ExpiresAt.After(now) {
			found := token
			return &found, nil
		}
	}
	return nil, nil
}

func (r tokenRepo) MarkUsed(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token, ok := r.s.tokens[id]
	if !ok || token.UsedAt != nil {
		return false, nil
	}
	token.UsedAt = &now
	r.s.tokens[id] = token
	return true, nil
}

type mfaRepo struct{ s *Store }

func (r mfaRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.MFASecret, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	secret, ok := r.s.mfaSecrets[userID]
	if !ok {
		return nil, nil
	}
	return &secret, nil
}

func (r mfaRepo) Upsert(_ context.Context, secret *entity.MFASecret) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if existing, ok := r.s.mfaSecrets[secret.UserID]; ok {
		secret.ID = existing.ID
	} else if secret.ID == uuid.Nil {
		secret.ID = uuid.New()
	}
	r.s.mfaSecrets[secret.UserID] = *secret
	return nil
}

func (r mfaRepo) Disable(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.mfaSecrets, userID)
	return nil
}

type securityLogRepo struct{ s *Store }

func (r securityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	r.s.securityLogs = append(r.s.securityLogs, *log)
	return nil
}

func (r securityLogRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.SecurityLog, 0)
	for i := len(r.s.securityLogs) - 1; i >= 0; i-- {
		log := r.s.securityLogs[i]
		if log.UserID != nil && *log.UserID == userID {
			out = append(out, log)
		}
	}
	return page(out, limit, 0), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sameOptional(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
