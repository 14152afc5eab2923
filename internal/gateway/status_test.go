package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
)

func TestStatus_ReturnsMetrics(t *testing.T) {
	t.Parallel()

	tracker := &fakeHealthTracker{
		all: []healthtrack.ProviderHealth{
			{Provider: provider.OpenAI, Status: healthtrack.Available},
		},
	}

	g := New(Config{}, "", nil, tracker, nil, nil, nil, nil)
	g.metrics.RecordCompletion("openai", 50, 100*time.Millisecond)
	g.metrics.RecordError("openai")
	g.startedAt = time.Now().Add(-5 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	g.handleStatus().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Metrics.Completions != 1 {
		t.Errorf("completions = %d, want 1", resp.Metrics.Completions)
	}
	if resp.Metrics.Errors != 1 {
		t.Errorf("errors = %d, want 1", resp.Metrics.Errors)
	}
	if len(resp.Providers) != 1 {
		t.Errorf("providers = %d, want 1", len(resp.Providers))
	}
	if resp.UptimeSeconds < 290 { // at least 290s (it's been 5 minutes)
		t.Errorf("uptime = %v, expected >= 290s", resp.UptimeSeconds)
	}
}

func TestStatus_NoHealthTracker(t *testing.T) {
	t.Parallel()

	g := New(Config{}, "", nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	g.handleStatus().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Providers) != 0 {
		t.Errorf("providers = %d, want 0", len(resp.Providers))
	}
}
