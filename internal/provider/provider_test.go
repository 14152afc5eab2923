package provider_test

import (
	"context"
	"testing"

	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/provider/providertest"
)

// Interface guard.
var _ provider.Adapter = (*providertest.MockAdapter)(nil)

func TestMockAdapterSatisfiesInterface(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockAdapter{
		GenerateFunc: func(_ context.Context, _ provider.Request) (provider.Response, error) {
			return provider.Response{Content: "ok", Provider: "openai"}, nil
		},
	}

	resp, err := mock.Generate(context.Background(), provider.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q, want %q", resp.Content, "ok")
	}
	if mock.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", mock.Calls())
	}
}
