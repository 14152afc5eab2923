package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config: the version field,
// at least one configured provider with a non-empty API key, well-formed
// cron expressions, and a non-empty database URL.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.Database.URL == "" {
		errs = append(errs, errors.New("config: database.url is required"))
	}

	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateCron(cfg.Cron)...)

	return errors.Join(errs...)
}

func validateProviders(providers map[string]ProviderConfig) []error {
	var errs []error
	if len(providers) == 0 {
		errs = append(errs, errors.New("config: at least one provider must be configured"))
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if _, ok := provider.FromAlias(name); !ok {
			errs = append(errs, fmt.Errorf("config: providers: unknown provider %q", name))
		}
	}
	// A provider entry with no api_key is not an error here: the gateway
	// falls back to the CredentialStore for its key at wiring time (see
	// pkg/app.Wire), and only errors if none end up with a usable key.
	return errs
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func validateCron(cfg CronConfig) []error {
	var errs []error
	if cfg.CatalogRefreshInterval != "" {
		if _, err := cronParser.Parse(cfg.CatalogRefreshInterval); err != nil {
			errs = append(errs, fmt.Errorf("config: cron.catalog_refresh_interval: %w", err))
		}
	}
	if cfg.HealthSweepInterval != "" {
		if _, err := cronParser.Parse(cfg.HealthSweepInterval); err != nil {
			errs = append(errs, fmt.Errorf("config: cron.health_sweep_interval: %w", err))
		}
	}
	return errs
}
