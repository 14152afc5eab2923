package catalog_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/storage"
)

func newStore(t *testing.T) *catalog.Store {
	t.Helper()
	_, store := newDBAndStore(t)
	return store
}

func newDBAndStore(t *testing.T) (*sql.DB, *catalog.Store) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "gateway.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, catalog.New(db)
}

func insertUsage(t *testing.T, db *sql.DB, provider string, success bool, latencyMS int64) {
	t.Helper()
	successInt := 0
	if success {
		successInt = 1
	}
	_, err := db.Exec(
		`INSERT INTO provider_usage (provider, success, latency_ms, created_at) VALUES (?, ?, ?, datetime('now'))`,
		provider, successInt, latencyMS,
	)
	if err != nil {
		t.Fatalf("insertUsage: %v", err)
	}
}

func TestStore_AdoptAndFirstActiveModel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	err := store.AdoptModel(ctx, provider.OpenAI, provider.Chat, "gpt-4o", "flagship", "", 10)
	if err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}

	model, ok, err := store.FirstActiveModel(ctx, provider.OpenAI, provider.Chat)
	if err != nil {
		t.Fatalf("FirstActiveModel: %v", err)
	}
	if !ok || model != "gpt-4o" {
		t.Errorf("FirstActiveModel = %q, %v, want gpt-4o, true", model, ok)
	}
}

func TestStore_FirstActiveModel_NoneReturnsFalse(t *testing.T) {
	t.Parallel()
	store := newStore(t)

	_, ok, err := store.FirstActiveModel(context.Background(), provider.Anthropic, provider.Chat)
	if err != nil {
		t.Fatalf("FirstActiveModel: %v", err)
	}
	if ok {
		t.Error("expected ok=false when no active model exists")
	}
}

func TestStore_AdoptModel_PrioritizesByPriorityThenRecency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	if err := store.AdoptModel(ctx, provider.OpenAI, provider.Chat, "gpt-4o-mini", "cheap", "", 50); err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}
	if err := store.AdoptModel(ctx, provider.OpenAI, provider.Chat, "gpt-4o", "flagship", "", 10); err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}

	model, ok, err := store.FirstActiveModel(ctx, provider.OpenAI, provider.Chat)
	if err != nil {
		t.Fatalf("FirstActiveModel: %v", err)
	}
	if !ok || model != "gpt-4o" {
		t.Errorf("FirstActiveModel = %q, want gpt-4o (lower priority wins)", model)
	}
}

func TestStore_RetireModel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	if err := store.AdoptModel(ctx, provider.Google, provider.Chat, "gemini-2.0-flash", "", "", 10); err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}

	changed, err := store.RetireModel(ctx, provider.Google, provider.Chat, "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("RetireModel: %v", err)
	}
	if !changed {
		t.Error("expected RetireModel to report a change")
	}

	_, ok, err := store.FirstActiveModel(ctx, provider.Google, provider.Chat)
	if err != nil {
		t.Fatalf("FirstActiveModel: %v", err)
	}
	if ok {
		t.Error("expected no active model after retiring the only one")
	}
}

func TestStore_RetireModel_NoMatchReturnsFalse(t *testing.T) {
	t.Parallel()
	store := newStore(t)

	changed, err := store.RetireModel(context.Background(), provider.Google, provider.Chat, "nonexistent")
	if err != nil {
		t.Fatalf("RetireModel: %v", err)
	}
	if changed {
		t.Error("expected no change retiring a nonexistent model")
	}
}

func TestStore_UpsertSuggestion_ThenAdoptTransitionsToAdopted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	err := store.UpsertSuggestion(ctx, provider.HuggingFace, provider.Chat, "some/model", "trial candidate", "", "pending")
	if err != nil {
		t.Fatalf("UpsertSuggestion: %v", err)
	}

	suggestions, err := store.ListSuggestions(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Status != "pending" {
		t.Fatalf("suggestions = %+v, want one pending", suggestions)
	}

	if err := store.AdoptModel(ctx, provider.HuggingFace, provider.Chat, "some/model", "promoted", "", 30); err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}

	suggestions, err = store.ListSuggestions(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Status != "adopted" {
		t.Errorf("suggestions = %+v, want one adopted", suggestions)
	}
}

func TestStore_UsageStats_EmptyReturnsZeroRate(t *testing.T) {
	t.Parallel()
	store := newStore(t)

	stats, err := store.UsageStats(context.Background(), provider.OpenAI, nil)
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if stats.TotalCalls != 0 || stats.SuccessRate != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}

func TestStore_UsageStats_ComputesRateAndLatency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, store := newDBAndStore(t)

	insertUsage(t, db, "openai", true, 100)
	insertUsage(t, db, "openai", true, 300)
	insertUsage(t, db, "openai", false, 500)

	stats, err := store.UsageStats(ctx, provider.OpenAI, nil)
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if stats.TotalCalls != 3 {
		t.Errorf("total calls = %d, want 3", stats.TotalCalls)
	}
	if stats.SuccessfulCalls != 2 {
		t.Errorf("successful calls = %d, want 2", stats.SuccessfulCalls)
	}
	wantRate := 2.0 / 3.0 * 100.0
	if stats.SuccessRate < wantRate-0.01 || stats.SuccessRate > wantRate+0.01 {
		t.Errorf("success rate = %v, want ~%v", stats.SuccessRate, wantRate)
	}
	if stats.MaxLatencyMS != 500 {
		t.Errorf("max latency = %d, want 500", stats.MaxLatencyMS)
	}
}

func TestStore_SeedDefaults_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	if err := store.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	if err := store.SeedDefaults(ctx); err != nil {
		t.Fatalf("second SeedDefaults: %v", err)
	}

	models, err := store.ActiveModels(ctx, provider.Groq, nil)
	if err != nil {
		t.Fatalf("ActiveModels: %v", err)
	}
	if len(models) == 0 {
		t.Error("expected seeded active models for Groq")
	}
}

func TestStore_SeedDefaults_DoesNotOverwriteAdopted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	if err := store.AdoptModel(ctx, provider.Groq, provider.Chat, "custom-model", "manually chosen", "", 1); err != nil {
		t.Fatalf("AdoptModel: %v", err)
	}
	if err := store.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	model, ok, err := store.FirstActiveModel(ctx, provider.Groq, provider.Chat)
	if err != nil {
		t.Fatalf("FirstActiveModel: %v", err)
	}
	if !ok || model != "custom-model" {
		t.Errorf("FirstActiveModel = %q, want custom-model (seed must not overwrite)", model)
	}
}

func TestStore_SatisfiesProviderCatalogStoreInterface(t *testing.T) {
	t.Parallel()
	var _ provider.CatalogStore = (*catalog.Store)(nil)
}
