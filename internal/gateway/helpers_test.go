package gateway

import (
	"context"
	"errors"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
)

// errHealthBoom is a sentinel error for exercising failure paths in tests.
var errHealthBoom = errors.New("health tracker boom")

// fakeRouter is a minimal Router test double.
type fakeRouter struct {
	resp provider.Response
	err  error
}

func (f *fakeRouter) Generate(_ context.Context, _ provider.Request) (provider.Response, error) {
	return f.resp, f.err
}

// fakeHealthTracker is a minimal HealthTracker test double.
type fakeHealthTracker struct {
	all []healthtrack.ProviderHealth
	err error
}

func (f *fakeHealthTracker) GetAllHealth(context.Context) ([]healthtrack.ProviderHealth, error) {
	return f.all, f.err
}

// fakeCatalog is a minimal CatalogStore test double.
type fakeCatalog struct {
	models      []catalog.ModelEntry
	suggestions []catalog.SuggestionEntry
	adoptErr    error
	retireFound bool
	retireErr   error

	lastAdopt struct {
		provider  provider.Provider
		workload  provider.Workload
		model     string
		rationale string
		metadata  string
		priority  int64
	}
}

func (f *fakeCatalog) ListModels(context.Context, *provider.Provider, *provider.Workload) ([]catalog.ModelEntry, error) {
	return f.models, nil
}

func (f *fakeCatalog) ListSuggestions(context.Context, *provider.Provider, *provider.Workload) ([]catalog.SuggestionEntry, error) {
	return f.suggestions, nil
}

func (f *fakeCatalog) AdoptModel(_ context.Context, p provider.Provider, w provider.Workload, model, rationale, metadata string, priority int64) error {
	f.lastAdopt.provider = p
	f.lastAdopt.workload = w
	f.lastAdopt.model = model
	f.lastAdopt.rationale = rationale
	f.lastAdopt.metadata = metadata
	f.lastAdopt.priority = priority
	return f.adoptErr
}

func (f *fakeCatalog) RetireModel(context.Context, provider.Provider, provider.Workload, string) (bool, error) {
	return f.retireFound, f.retireErr
}
