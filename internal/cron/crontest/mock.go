// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/cron"
	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/refresh"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// MockCatalogLister is a test double for cron.CatalogLister.
type MockCatalogLister struct {
	Entries []catalog.ModelEntry
	Err     error
}

// Compile-time interface check.
var _ cron.CatalogLister = (*MockCatalogLister)(nil)

// ListModels implements cron.CatalogLister.
func (m *MockCatalogLister) ListModels(context.Context, *provider.Provider, *provider.Workload) ([]catalog.ModelEntry, error) {
	return m.Entries, m.Err
}

// MockHealthChecker is a test double for cron.HealthChecker.
type MockHealthChecker struct {
	Health []healthtrack.ProviderHealth
	Err    error
}

// Compile-time interface check.
var _ cron.HealthChecker = (*MockHealthChecker)(nil)

// GetAllHealth implements cron.HealthChecker.
func (m *MockHealthChecker) GetAllHealth(context.Context) ([]healthtrack.ProviderHealth, error) {
	return m.Health, m.Err
}

// NewRefreshFunc adapts a fixed result/error pair into a cron.RefreshFunc,
// recording each call's (provider, workload, dryRun) for assertions.
func NewRefreshFunc(result refresh.Result, err error) (cron.RefreshFunc, *[]RefreshCall) {
	calls := &[]RefreshCall{}
	fn := func(_ context.Context, p provider.Provider, w provider.Workload, dryRun bool) (refresh.Result, error) {
		*calls = append(*calls, RefreshCall{Provider: p, Workload: w, DryRun: dryRun})
		return result, err
	}
	return fn, calls
}

// RefreshCall records one invocation of a mocked cron.RefreshFunc.
type RefreshCall struct {
	Provider provider.Provider
	Workload provider.Workload
	DryRun   bool
}
