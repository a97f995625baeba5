package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultSessionTTL = 24 * time.Hour

type JWTManager struct {
	Secret         []byte
	Issuer         string
	AccessTokenTTL time.Duration
	// Now overrides the clock used for issuing and validating; nil means
	// time.Now.
	Now func() time.Time
}

// AccessClaims is everything a request needs to authorize without a
// database round trip.
type AccessClaims struct {
	UserID      string   `json:"sub"`
	Role        string   `json:"role"`
	TenantID    string   `json:"tid"`
	LeagueID    string   `json:"lid,omitempty"`
	IsSocio     bool     `json:"socio"`
	Permissions []string `json:"perms"`
	SessionID   string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// TokenSubject is the data encoded into an access token.
type TokenSubject struct {
	UserID      string
	Role        string
	TenantID    string
	LeagueID    string
	IsSocio     bool
	Permissions []string
	SessionID   string
}

func (m JWTManager) IssueAccessToken(subject TokenSubject) (string, time.Time, error) {
	ttl := m.AccessTokenTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := AccessClaims{
		UserID:      subject.UserID,
		Role:        subject.Role,
		TenantID:    subject.TenantID,
		LeagueID:    subject.LeagueID,
		IsSocio:     subject.IsSocio,
		Permissions: subject.Permissions,
		SessionID:   subject.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   subject.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies signature and expiry. Every failure collapses
// into ErrInvalidToken.
func (m JWTManager) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if m.Issuer != "" && claims.Issuer != m.Issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
