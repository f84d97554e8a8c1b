package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Identity is who a session is issued for.
type Identity struct {
	Subject string
	Name    string
	Email   string
}

// Session is a verified session token.
type Session struct {
	Subject   string    `json:"sub"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue signs a new session for id. It fails with ErrSessionNotConfigured when no secret is set.
func (m *SessionManager) Issue(id Identity) (string, *Session, error) {
	if len(m.secret) == 0 {
		return "", nil, ErrSessionNotConfigured
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := sessionClaims{
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return token, &Session{
		Subject:   id.Subject,
		Name:      id.Name,
		Email:     id.Email,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// Verify checks the signature and expiry of token.
// Every failure is reported as domain.ErrUnauthorized.
func (m *SessionManager) Verify(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("missing session: %w", domain.ErrUnauthorized)
	}
	if len(m.secret) == 0 {
		return nil, fmt.Errorf("sessions cannot be verified without a secret: %w", domain.ErrUnauthorized)
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %v: %w", err, domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("session missing subject: %w", domain.ErrUnauthorized)
	}

	return &Session{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
