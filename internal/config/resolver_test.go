package config

import (
	"testing"

	"github.com/freegin-ai/gateway/internal/provider"
)

func TestResolveProviders_SortsByEnumValue(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"groq":   {APIKey: "g"},
		"openai": {APIKey: "o"},
		"google": {APIKey: "gg"},
	}}

	resolved, err := ResolveProviders(cfg)
	if err != nil {
		t.Fatalf("ResolveProviders: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("resolved = %d, want 3", len(resolved))
	}
	for i := 1; i < len(resolved); i++ {
		if resolved[i-1].Provider > resolved[i].Provider {
			t.Errorf("resolved providers not sorted: %v before %v", resolved[i-1].Provider, resolved[i].Provider)
		}
	}
}

func TestResolveProviders_AcceptsAliases(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"hf": {APIKey: "x"},
	}}

	resolved, err := ResolveProviders(cfg)
	if err != nil {
		t.Fatalf("ResolveProviders: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Provider != provider.HuggingFace {
		t.Errorf("resolved = %+v, want a single HuggingFace entry", resolved)
	}
}

func TestResolveProviders_UnknownProviderErrors(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"not-a-provider": {APIKey: "x"},
	}}

	if _, err := ResolveProviders(cfg); err == nil {
		t.Fatal("expected an error for an unrecognized provider name")
	}
}
