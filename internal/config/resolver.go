package config

import (
	"fmt"
	"slices"

	"github.com/freegin-ai/gateway/internal/provider"
)

// ResolvedProvider pairs a canonical provider with its configured
// credentials, ready for internal/adapter.New.
type ResolvedProvider struct {
	Provider provider.Provider
	Config   ProviderConfig
}

// ResolveProviders maps cfg.Providers' string keys to canonical providers
// via provider.FromAlias, sorted by provider enum value for deterministic
// adapter construction order (construction order is the router's fallback
// order when no hints apply). Unknown provider names are reported as
// errors rather than silently skipped, since a typo there means a
// provider the operator intended to configure silently never loads.
func ResolveProviders(cfg *Config) ([]ResolvedProvider, error) {
	out := make([]ResolvedProvider, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		p, ok := provider.FromAlias(name)
		if !ok {
			return nil, fmt.Errorf("config: unknown provider %q", name)
		}
		out = append(out, ResolvedProvider{Provider: p, Config: pc})
	}
	slices.SortFunc(out, func(a, b ResolvedProvider) int {
		return int(a.Provider) - int(b.Provider)
	})
	return out, nil
}
