package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/dfryer1193/sitepress/internal/config"
	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// IdentityProvider is a remote login provider using the authorization code flow.
type IdentityProvider interface {
	// AuthCodeURL is where the browser is sent to start a login.
	AuthCodeURL(state string) string
	// Identify exchanges an authorization code for the caller's profile.
	Identify(ctx context.Context, code string) (*Profile, error)
}

// Profile is the caller's account on the identity provider.
type Profile struct {
	Login string
	Name  string
	Email string
}

// GithubIdentityProvider logs users in with a GitHub OAuth app.
type GithubIdentityProvider struct {
	config *oauth2.Config

	// apiBaseURL overrides the REST API location. Empty means api.github.com.
	apiBaseURL string
}

// NewGithubIdentityProvider returns nil when no OAuth app is configured.
func NewGithubIdentityProvider(cfg config.AuthConfig) *GithubIdentityProvider {
	if !cfg.OAuthConfigured() {
		return nil
	}

	return &GithubIdentityProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth.Endpoint,
		},
	}
}

func (p *GithubIdentityProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GithubIdentityProvider) Identify(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github: code exchange failed: %v: %w", err, domain.ErrUnauthorized)
	}

	client := github.NewClient(p.config.Client(ctx, token))
	if p.apiBaseURL != "" {
		baseURL, err := url.Parse(p.apiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("github: invalid api url: %w", err)
		}
		client.BaseURL = baseURL
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("github: fetching profile failed: %v: %w", err, domain.ErrBackendUnavailable)
	}

	return &Profile{
		Login: user.GetLogin(),
		Name:  user.GetName(),
		Email: user.GetEmail(),
	}, nil
}
