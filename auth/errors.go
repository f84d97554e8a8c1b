package auth

import (
	"fmt"

	"github.com/dfryer1193/sitepress/blog/domain"
)

var (
	// ErrInvalidCredentials is returned when a submitted secret does not match.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	// ErrAccessDenied is returned when the identity provider vouches for someone other than the admin.
	ErrAccessDenied = fmt.Errorf("access denied: %w", domain.ErrUnauthorized)

	ErrLocalLoginNotConfigured = fmt.Errorf("local login %w", domain.ErrNotConfigured)
	ErrSessionNotConfigured    = fmt.Errorf("session signing %w", domain.ErrNotConfigured)
	ErrOAuthNotConfigured      = fmt.Errorf("github login %w", domain.ErrNotConfigured)
)
