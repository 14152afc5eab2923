package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/refresh"
)

// testCatalogLister implements CatalogLister for job tests.
type testCatalogLister struct {
	entries []catalog.ModelEntry
	err     error
}

func (c *testCatalogLister) ListModels(_ context.Context, _ *provider.Provider, _ *provider.Workload) ([]catalog.ModelEntry, error) {
	return c.entries, c.err
}

func TestCatalogRefreshJob_Name(t *testing.T) {
	t.Parallel()
	j := &CatalogRefreshJob{Logger: slog.Default()}
	if j.Name() != "catalog_refresh" {
		t.Errorf("name = %q, want %q", j.Name(), "catalog_refresh")
	}
}

func TestCatalogRefreshJob_Schedule(t *testing.T) {
	t.Parallel()
	j := &CatalogRefreshJob{Logger: slog.Default()}
	if j.Schedule() != "0 */6 * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "0 */6 * * *")
	}
}

func TestCatalogRefreshJob_ScheduleOverride(t *testing.T) {
	t.Parallel()
	j := &CatalogRefreshJob{Logger: slog.Default(), ScheduleExpr: "0 */2 * * *"}
	if got := j.Schedule(); got != "0 */2 * * *" {
		t.Errorf("schedule = %q, want %q", got, "0 */2 * * *")
	}
}

func TestCatalogRefreshJob_Run_NilDepsNoop(t *testing.T) {
	t.Parallel()
	j := &CatalogRefreshJob{Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCatalogRefreshJob_Run_CancelledContext(t *testing.T) {
	t.Parallel()
	j := &CatalogRefreshJob{Logger: slog.Default()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCatalogRefreshJob_Run_RefreshesEachDistinctActivePair(t *testing.T) {
	t.Parallel()

	cat := &testCatalogLister{entries: []catalog.ModelEntry{
		{Provider: provider.Groq, Workload: provider.Chat, Model: "llama-3.3-70b-versatile", Status: "active"},
		{Provider: provider.Groq, Workload: provider.Chat, Model: "llama-4", Status: "active"}, // same pair, should dedup
		{Provider: provider.OpenAI, Workload: provider.Code, Model: "gpt-4o-mini", Status: "active"},
		{Provider: provider.Cohere, Workload: provider.Chat, Model: "retired-one", Status: "retired"}, // skipped
	}}

	var calls []provider.Provider
	j := &CatalogRefreshJob{
		Logger:  slog.Default(),
		Catalog: cat,
		Refresh: func(_ context.Context, p provider.Provider, _ provider.Workload, _ bool) (refresh.Result, error) {
			calls = append(calls, p)
			return refresh.Result{Suggestions: []refresh.Suggestion{{Model: "x"}}}, nil
		},
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("refresh calls = %d, want 2 (one per distinct active pair): %v", len(calls), calls)
	}
}

func TestCatalogRefreshJob_Run_CircuitBreaker(t *testing.T) {
	t.Parallel()

	var entries []catalog.ModelEntry
	for i := range 5 {
		entries = append(entries, catalog.ModelEntry{
			Provider: provider.Provider(i % len(provider.AllProviders)),
			Workload: provider.Chat,
			Model:    fmt.Sprintf("model-%d", i),
			Status:   "active",
		})
	}
	cat := &testCatalogLister{entries: entries}

	var calls int
	j := &CatalogRefreshJob{
		Logger:  slog.Default(),
		Catalog: cat,
		Refresh: func(_ context.Context, _ provider.Provider, _ provider.Workload, _ bool) (refresh.Result, error) {
			calls++
			return refresh.Result{}, errors.New("upstream unavailable")
		},
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls > 3 {
		t.Errorf("refresh calls = %d, want <= 3 (circuit breaker)", calls)
	}
}

func TestCatalogRefreshJob_Run_ListErrorPropagates(t *testing.T) {
	t.Parallel()

	cat := &testCatalogLister{err: errors.New("db unavailable")}
	j := &CatalogRefreshJob{
		Logger:  slog.Default(),
		Catalog: cat,
		Refresh: func(context.Context, provider.Provider, provider.Workload, bool) (refresh.Result, error) {
			t.Fatal("refresh should not be called when listing fails")
			return refresh.Result{}, nil
		},
	}

	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected the listing error to propagate")
	}
}

// testHealthChecker implements HealthChecker for job tests.
type testHealthChecker struct {
	health []healthtrack.ProviderHealth
	err    error
}

func (h *testHealthChecker) GetAllHealth(_ context.Context) ([]healthtrack.ProviderHealth, error) {
	return h.health, h.err
}

func TestHealthSweepJob_Name(t *testing.T) {
	t.Parallel()
	j := &HealthSweepJob{Logger: slog.Default()}
	if j.Name() != "health_sweep" {
		t.Errorf("name = %q, want %q", j.Name(), "health_sweep")
	}
}

func TestHealthSweepJob_Schedule(t *testing.T) {
	t.Parallel()
	j := &HealthSweepJob{Logger: slog.Default()}
	if j.Schedule() != "*/5 * * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "*/5 * * * *")
	}
}

func TestHealthSweepJob_ScheduleOverride(t *testing.T) {
	t.Parallel()
	j := &HealthSweepJob{Logger: slog.Default(), ScheduleExpr: "*/1 * * * *"}
	if got := j.Schedule(); got != "*/1 * * * *" {
		t.Errorf("schedule = %q, want %q", got, "*/1 * * * *")
	}
}

func TestHealthSweepJob_Run_NilDepsNoop(t *testing.T) {
	t.Parallel()
	j := &HealthSweepJob{Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealthSweepJob_Run_CancelledContext(t *testing.T) {
	t.Parallel()
	j := &HealthSweepJob{Logger: slog.Default()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestHealthSweepJob_Run_LogsDegradedProviders(t *testing.T) {
	t.Parallel()

	checker := &testHealthChecker{health: []healthtrack.ProviderHealth{
		{Provider: provider.OpenAI, Status: healthtrack.Available},
		{Provider: provider.Groq, Status: healthtrack.Degraded, ConsecutiveFailures: 2},
		{Provider: provider.Cohere, Status: healthtrack.Unavailable, ConsecutiveFailures: 9},
	}}

	j := &HealthSweepJob{Logger: slog.Default(), Health: checker}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealthSweepJob_Run_PropagatesError(t *testing.T) {
	t.Parallel()

	checker := &testHealthChecker{err: errors.New("db unavailable")}
	j := &HealthSweepJob{Logger: slog.Default(), Health: checker}
	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected the health tracker's error to propagate")
	}
}
