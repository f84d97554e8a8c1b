// Package config builds the process configuration once at startup from defaults,
// an optional config file and the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Content ContentConfig
	GitHub  GitHubConfig
	Auth    AuthConfig

	CORSAllowedOrigins []string
}

// ContentConfig selects and parameterizes the post store.
type ContentConfig struct {
	Dir           string
	DefaultAuthor string
	SiteURL       string
	UseGithubAPI  bool
}

// GitHubConfig identifies the repository holding posts when the remote store is enabled.
type GitHubConfig struct {
	Token       string
	Owner       string
	Repo        string
	ContentPath string
	Branch      string
}

// Configured reports whether the remote store has everything it needs.
func (g GitHubConfig) Configured() bool {
	return g.Token != "" && g.Owner != "" && g.Repo != ""
}

type AuthConfig struct {
	ClientID         string
	ClientSecret     string
	OAuthRedirectURL string
	AdminUsername    string

	// LocalPassword is either the shared secret itself or a bcrypt hash of it.
	LocalPassword string
	SessionSecret string

	ProbeURL     string
	ProbeTimeout time.Duration

	AdminRedirectPath string
	LoginPath         string
}

// OAuthConfigured reports whether identity-provider login can be started.
func (a AuthConfig) OAuthConfigured() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("CONTENT_DIR", "content/blogs")
	v.SetDefault("DEFAULT_AUTHOR", "Francisco Beron")
	v.SetDefault("SITE_URL", "")
	v.SetDefault("USE_GITHUB_API", false)

	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_OWNER", "")
	v.SetDefault("GITHUB_REPO", "")
	v.SetDefault("GITHUB_CONTENT_PATH", "content/blogs")
	v.SetDefault("GITHUB_BRANCH", "")

	v.SetDefault("GITHUB_ID", "")
	v.SetDefault("GITHUB_SECRET", "")
	v.SetDefault("GITHUB_OAUTH_REDIRECT_URL", "")
	v.SetDefault("ADMIN_GITHUB_USERNAME", "")
	v.SetDefault("LOCAL_ADMIN_PASSWORD", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("PROBE_URL", "https://api.github.com")
	v.SetDefault("PROBE_TIMEOUT", 3*time.Second)
	v.SetDefault("ADMIN_REDIRECT_PATH", "/admin")
	v.SetDefault("LOGIN_PATH", "/admin/login")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
}

// Load reads the configuration. path may be empty, in which case only defaults and
// environment variables apply. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Content: ContentConfig{
			Dir:           v.GetString("CONTENT_DIR"),
			DefaultAuthor: v.GetString("DEFAULT_AUTHOR"),
			SiteURL:       v.GetString("SITE_URL"),
			UseGithubAPI:  v.GetBool("USE_GITHUB_API"),
		},
		GitHub: GitHubConfig{
			Token:       v.GetString("GITHUB_TOKEN"),
			Owner:       v.GetString("GITHUB_OWNER"),
			Repo:        v.GetString("GITHUB_REPO"),
			ContentPath: v.GetString("GITHUB_CONTENT_PATH"),
			Branch:      v.GetString("GITHUB_BRANCH"),
		},
		Auth: AuthConfig{
			ClientID:          v.GetString("GITHUB_ID"),
			ClientSecret:      v.GetString("GITHUB_SECRET"),
			OAuthRedirectURL:  v.GetString("GITHUB_OAUTH_REDIRECT_URL"),
			AdminUsername:     v.GetString("ADMIN_GITHUB_USERNAME"),
			LocalPassword:     v.GetString("LOCAL_ADMIN_PASSWORD"),
			SessionSecret:     v.GetString("SESSION_SECRET"),
			ProbeURL:          v.GetString("PROBE_URL"),
			ProbeTimeout:      v.GetDuration("PROBE_TIMEOUT"),
			AdminRedirectPath: v.GetString("ADMIN_REDIRECT_PATH"),
			LoginPath:         v.GetString("LOGIN_PATH"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
}

// splitList parses a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
