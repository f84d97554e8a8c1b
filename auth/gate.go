// Package auth decides who may mutate posts: it advises a login strategy, checks local and
// identity-provider logins, and verifies session tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/dfryer1193/sitepress/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	localSubject = "local-admin"
	localEmail   = "admin@local"
	localName    = "Admin"
)

// Gate is the access gate in front of every mutating request.
type Gate struct {
	cfg      config.AuthConfig
	sessions *SessionManager
	identity IdentityProvider
	prober   *Prober
}

// NewGate builds the gate. identity may be nil, which disables identity-provider login.
func NewGate(cfg config.AuthConfig, identity IdentityProvider) *Gate {
	return &Gate{
		cfg:      cfg,
		sessions: NewSessionManager(cfg.SessionSecret),
		identity: identity,
		prober:   NewProber(cfg.ProbeURL, cfg.ProbeTimeout),
	}
}

// Probe advises which login strategy is currently viable. It never fails.
func (g *Gate) Probe(ctx context.Context) ProbeResult {
	return g.prober.Probe(ctx)
}

// LocalLogin checks password against the configured shared secret and issues a session.
func (g *Gate) LocalLogin(password string) (string, *Session, error) {
	if g.cfg.LocalPassword == "" {
		return "", nil, ErrLocalLoginNotConfigured
	}

	if !checkSecret(g.cfg.LocalPassword, password) {
		log.Warn().Msg("Rejected local login")
		return "", nil, ErrInvalidCredentials
	}

	name := g.cfg.AdminUsername
	if name == "" {
		name = localName
	}
	return g.sessions.Issue(Identity{Subject: localSubject, Name: name, Email: localEmail})
}

// LoginURL is where to send the browser to start an identity-provider login.
func (g *Gate) LoginURL(state string) (string, error) {
	if g.identity == nil {
		return "", ErrOAuthNotConfigured
	}
	return g.identity.AuthCodeURL(state), nil
}

// IdentityLogin completes an identity-provider login. Only the configured admin is let in;
// with no admin configured nobody is.
func (g *Gate) IdentityLogin(ctx context.Context, code string) (string, *Session, error) {
	if g.identity == nil {
		return "", nil, ErrOAuthNotConfigured
	}

	profile, err := g.identity.Identify(ctx, code)
	if err != nil {
		return "", nil, err
	}

	if g.cfg.AdminUsername == "" || !strings.EqualFold(profile.Login, g.cfg.AdminUsername) {
		log.Warn().Str("login", profile.Login).Msg("Rejected identity login for non-admin account")
		return "", nil, fmt.Errorf("%s is not the site admin: %w", profile.Login, ErrAccessDenied)
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	return g.sessions.Issue(Identity{Subject: profile.Login, Name: name, Email: profile.Email})
}

// Authorize verifies a session token presented with a request.
func (g *Gate) Authorize(token string) (*Session, error) {
	return g.sessions.Verify(token)
}

// checkSecret compares a submitted password with the configured secret, which is either
// plaintext or a bcrypt hash.
func checkSecret(secret string, password string) bool {
	if isBcryptHash(secret) {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// HashPassword returns a bcrypt hash suitable for LOCAL_ADMIN_PASSWORD.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
