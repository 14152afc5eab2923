package app

import (
	"path/filepath"
	"testing"

	"github.com/freegin-ai/gateway/internal/config"
)

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	return &config.Config{
		Version: "1",
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Database: config.DatabaseConfig{
			URL: "sqlite:" + dbPath,
		},
		Providers: map[string]config.ProviderConfig{
			"openai": {APIKey: "test-key-openai"},
		},
		Cron: config.CronConfig{
			CatalogRefreshInterval: "0 */6 * * *",
			HealthSweepInterval:    "*/5 * * * *",
		},
	}
}

func TestWire_BuildsAllCollaborators(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dbPath := filepath.Join(t.TempDir(), "gateway.db")
	cfg := testConfig(t, dbPath)

	application, err := Wire(cfg, "", nil)
	if err != nil {
		t.Fatalf("Wire: %v", err)
	}
	defer func() { _ = application.Close() }()

	if application.DB == nil {
		t.Error("expected non-nil DB")
	}
	if application.Gateway == nil {
		t.Error("expected non-nil Gateway")
	}
	if application.Scheduler == nil {
		t.Error("expected non-nil Scheduler")
	}
	if application.Router == nil {
		t.Error("expected non-nil Router")
	}
	if application.Catalog == nil {
		t.Error("expected non-nil Catalog")
	}
}

func TestWire_NoUsableCredentials(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dbPath := filepath.Join(t.TempDir(), "gateway.db")
	cfg := testConfig(t, dbPath)
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {},
	}

	_, err := Wire(cfg, "", nil)
	if err == nil {
		t.Fatal("expected error when no provider has a usable credential")
	}
}

func TestWire_UnknownProviderName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dbPath := filepath.Join(t.TempDir(), "gateway.db")
	cfg := testConfig(t, dbPath)
	cfg.Providers = map[string]config.ProviderConfig{
		"not-a-real-provider": {APIKey: "x"},
	}

	_, err := Wire(cfg, "", nil)
	if err == nil {
		t.Fatal("expected error for unknown provider name")
	}
}

func TestDbPathFromURL(t *testing.T) {
	t.Parallel()

	got := dbPathFromURL("sqlite:/var/lib/freegin-ai/gateway.db")
	want := "/var/lib/freegin-ai/gateway.db"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
