package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/refresh"
)

// CatalogLister is the subset of internal/catalog.Store the refresh job
// depends on, to discover which (provider, workload) pairs currently carry
// active models and are therefore worth refreshing.
type CatalogLister interface {
	ListModels(ctx context.Context, p *provider.Provider, w *provider.Workload) ([]catalog.ModelEntry, error)
}

// RefreshFunc runs one LLM-assisted catalog refresh for (p, w). It is
// ordinarily refresh.Refresh bound to a concrete router and catalog store.
type RefreshFunc func(ctx context.Context, p provider.Provider, w provider.Workload, dryRun bool) (refresh.Result, error)

// CatalogRefreshJob periodically asks the refresh package for model
// suggestions across every (provider, workload) pair that currently has at
// least one active model. Dependencies left nil make the job a no-op tick,
// consistent with how this scheduler is wired before a database is attached.
type CatalogRefreshJob struct {
	Logger       *slog.Logger
	Catalog      CatalogLister
	Refresh      RefreshFunc
	DryRun       bool
	ScheduleExpr string // empty = default "0 */6 * * *"
}

// Compile-time interface check.
var _ Job = (*CatalogRefreshJob)(nil)

// Name implements Job.
func (j *CatalogRefreshJob) Name() string { return "catalog_refresh" }

// Schedule implements Job.
func (j *CatalogRefreshJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 */6 * * *"
}

// Run refreshes every distinct active (provider, workload) pair in turn,
// logging and continuing past individual failures rather than aborting the
// whole sweep over one provider's trouble.
func (j *CatalogRefreshJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: catalog refresh cancelled: %w", ctx.Err())
	}
	if j.Catalog == nil || j.Refresh == nil {
		j.Logger.Debug("cron: catalog refresh skipped (deps not wired)")
		return nil
	}

	entries, err := j.Catalog.ListModels(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("cron: listing active models: %w", err)
	}

	type pair struct {
		provider provider.Provider
		workload provider.Workload
	}
	seen := make(map[pair]bool)
	var pairs []pair
	for _, e := range entries {
		if e.Status != "active" {
			continue
		}
		key := pair{provider: e.Provider, workload: e.Workload}
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, key)
	}

	const maxConsecutiveErrors = 3
	consecutiveErrors := 0
	refreshed, suggested := 0, 0

	for _, p := range pairs {
		if ctx.Err() != nil {
			return fmt.Errorf("cron: catalog refresh cancelled: %w", ctx.Err())
		}
		if consecutiveErrors >= maxConsecutiveErrors {
			j.Logger.Warn("cron: catalog refresh stopping after consecutive errors", "errors", consecutiveErrors)
			break
		}

		result, err := j.Refresh(ctx, p.provider, p.workload, j.DryRun)
		if err != nil {
			consecutiveErrors++
			j.Logger.Error("cron: catalog refresh failed", "provider", p.provider, "workload", p.workload, "error", err)
			continue
		}
		consecutiveErrors = 0
		refreshed++
		suggested += len(result.Suggestions)
	}

	if refreshed > 0 {
		j.Logger.Info("cron: catalog refresh swept active pairs", "pairs", refreshed, "suggestions", suggested)
	}
	return nil
}

// HealthChecker is the subset of internal/healthtrack.Tracker the sweep job
// depends on.
type HealthChecker interface {
	GetAllHealth(ctx context.Context) ([]healthtrack.ProviderHealth, error)
}

// HealthSweepJob periodically logs every provider's current health
// classification, surfacing degraded or unavailable providers even when
// nothing is actively routing traffic to notice them.
type HealthSweepJob struct {
	Logger       *slog.Logger
	Health       HealthChecker
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*HealthSweepJob)(nil)

// Name implements Job.
func (j *HealthSweepJob) Name() string { return "health_sweep" }

// Schedule implements Job.
func (j *HealthSweepJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run logs a warning per degraded or unavailable provider and a single
// debug line summarizing the sweep otherwise.
func (j *HealthSweepJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: health sweep cancelled: %w", ctx.Err())
	}
	if j.Health == nil {
		j.Logger.Debug("cron: health sweep skipped (deps not wired)")
		return nil
	}

	all, err := j.Health.GetAllHealth(ctx)
	if err != nil {
		return fmt.Errorf("cron: health sweep: %w", err)
	}

	var unhealthy int
	for _, h := range all {
		if h.Status == healthtrack.Available {
			continue
		}
		unhealthy++
		j.Logger.Warn("cron: provider health degraded",
			"provider", h.Provider, "status", h.Status,
			"consecutive_failures", h.ConsecutiveFailures, "last_error", h.LastError)
	}

	j.Logger.Debug("cron: health sweep complete", "providers", len(all), "unhealthy", unhealthy)
	return nil
}
