// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/freegin-ai/gateway/internal/provider"
)

// MockAdapter is a configurable test double for provider.Adapter.
// Set GenerateFunc to control behavior. An unset GenerateFunc panics on
// call. Safe for concurrent use.
type MockAdapter struct {
	GenerateFunc func(ctx context.Context, req provider.Request) (provider.Response, error)

	mu            sync.Mutex
	GenerateCalls int
}

// Generate delegates to GenerateFunc and tracks call count.
func (m *MockAdapter) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	m.mu.Lock()
	m.GenerateCalls++
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}

// Calls returns the number of times Generate has been invoked.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateCalls
}

// Interface guard.
var _ provider.Adapter = (*MockAdapter)(nil)
