package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/cexll/ideas-portal/internal/github"
)

// Config holds all configuration for the ideas portal host.
type Config struct {
	// Server settings
	Port          int    `env:"PORT, default=8000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8000"`

	// GitHub settings. The tools check token and repository on every call,
	// so neither is required at startup.
	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubRepo   string `env:"GITHUB_REPO"`
	GitHubAPIURL string `env:"GITHUB_API_URL"`

	// Action signing. Empty secret disables action tokens.
	ActionSigningSecret string        `env:"ACTION_SIGNING_SECRET"`
	ActionTokenTTL      time.Duration `env:"ACTION_TOKEN_TTL, default=1h"`
}

// Load loads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration through lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.ActionSigningSecret = normalizeSecret(cfg.ActionSigningSecret)
	cfg.PublicBaseURL = strings.TrimSuffix(cfg.PublicBaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SigningEnabled reports whether action tokens are issued and required.
func (c *Config) SigningEnabled() bool {
	return c.ActionSigningSecret != ""
}

// normalizeSecret strips surrounding whitespace and one layer of quotes, as
// left behind by some .env editors.
func normalizeSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 2 {
		if (strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"")) ||
			(strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'")) {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}

// validate checks the loaded values
func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if err := validateURL("PUBLIC_BASE_URL", c.PublicBaseURL); err != nil {
		return err
	}
	if c.GitHubAPIURL != "" {
		if err := validateURL("GITHUB_API_URL", c.GitHubAPIURL); err != nil {
			return err
		}
	}
	if c.GitHubRepo != "" {
		if _, _, err := github.ParseRepo(c.GitHubRepo); err != nil {
			return fmt.Errorf("GITHUB_REPO: %w", err)
		}
	}
	if c.ActionTokenTTL <= 0 {
		return fmt.Errorf("ACTION_TOKEN_TTL must be greater than 0")
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
