// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for the gateway.
package config

import "github.com/freegin-ai/gateway/internal/security"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Server    ServerConfig              `yaml:"server" envPrefix:"APP__SERVER__"`
	Database  DatabaseConfig            `yaml:"database" envPrefix:"APP__DATABASE__"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Cron      CronConfig                `yaml:"cron" envPrefix:"APP__CRON__"`
	Auth      AuthConfig                `yaml:"auth" envPrefix:"APP__AUTH__"`
	Security  SecurityConfig            `yaml:"security,omitempty" envPrefix:"APP__SECURITY__"`
}

// ServerConfig controls the HTTP surface's listen address.
type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// DatabaseConfig points at the gateway's embedded SQLite database.
// URL uses the "sqlite:" scheme; a relative path resolves under the
// platform-conventional data directory.
type DatabaseConfig struct {
	URL string `yaml:"url" env:"URL"`
}

// ProviderConfig is one entry under providers.<name>. Provider credentials
// are not subject to APP__-prefixed env override; the in-file
// ${VAR}/${VAR:-default} expansion is the supported way to source them
// from the environment, since provider names are dynamic map keys the
// env-var prefixing convention cannot address.
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	APIBaseURL string `yaml:"api_base_url,omitempty"`
}

// CronConfig controls the scheduler's background job intervals, expressed
// as 5-field cron expressions (see internal/cron).
type CronConfig struct {
	CatalogRefreshInterval string `yaml:"catalog_refresh_interval" env:"CATALOG_REFRESH_INTERVAL"`
	HealthSweepInterval    string `yaml:"health_sweep_interval" env:"HEALTH_SWEEP_INTERVAL"`
}

// AuthConfig controls the HTTP surface's authentication. A request may
// present either a bearer token or HTTP basic credentials; either, both,
// or neither may be configured.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token,omitempty" env:"BEARER_TOKEN"`
	BasicUser   string `yaml:"basic_user,omitempty" env:"BASIC_USER"`
	BasicPass   string `yaml:"basic_pass,omitempty" env:"BASIC_PASS"`
}

// SecurityConfig holds security-related settings for the gateway's own
// HTTP surface (distinct from per-provider credentials).
type SecurityConfig struct {
	RateLimits security.RateLimitConfig `yaml:"rate_limits,omitempty" envPrefix:"RATE_LIMITS__"`
}
