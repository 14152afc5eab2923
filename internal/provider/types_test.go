package provider

import (
	"encoding/json"
	"testing"
)

func TestProvider_StringAndAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider Provider
		want     string
	}{
		{OpenAI, "openai"},
		{Google, "google"},
		{HuggingFace, "huggingface"},
		{Anthropic, "anthropic"},
		{Cohere, "cohere"},
		{Groq, "groq"},
		{DeepSeek, "deepseek"},
		{Together, "together"},
		{Cloudflare, "cloudflare"},
		{Cerebras, "cerebras"},
		{Mistral, "mistral"},
		{Clarifai, "clarifai"},
		{GitHubModels, "github"},
		{OpenRouter, "openrouter"},
	}

	for _, tt := range tests {
		if got := tt.provider.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.provider, got, tt.want)
		}
		got, ok := FromAlias(tt.want)
		if !ok || got != tt.provider {
			t.Errorf("FromAlias(%q) = %v, %v, want %v, true", tt.want, got, ok, tt.provider)
		}
	}
}

func TestFromAlias_ExtraAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		alias string
		want  Provider
	}{
		{"gpt", OpenAI},
		{"gemini", Google},
		{"hf", HuggingFace},
		{"hugging_face", HuggingFace},
		{"claude", Anthropic},
		{"togetherai", Together},
		{"together_ai", Together},
		{"cf", Cloudflare},
		{"workers", Cloudflare},
		{"workers_ai", Cloudflare},
		{"GITHUB", GitHubModels},
		{"  openai  ", OpenAI},
	}

	for _, tt := range tests {
		got, ok := FromAlias(tt.alias)
		if !ok || got != tt.want {
			t.Errorf("FromAlias(%q) = %v, %v, want %v, true", tt.alias, got, ok, tt.want)
		}
	}
}

func TestFromAlias_Unknown(t *testing.T) {
	t.Parallel()

	if _, ok := FromAlias("not-a-provider"); ok {
		t.Error("expected FromAlias to reject an unknown alias")
	}
}

// FromAlias is not the inverse of String(): "togetherai" parses to Together,
// but Together.String() always emits the canonical "together" form.
func TestFromAlias_NotIdentityWithString(t *testing.T) {
	t.Parallel()

	got, ok := FromAlias("togetherai")
	if !ok || got != Together {
		t.Fatalf("FromAlias(togetherai) = %v, %v", got, ok)
	}
	if got.String() != "together" {
		t.Errorf("String() = %q, want canonical %q", got.String(), "together")
	}
}

func TestProvider_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		P Provider `json:"p"`
	}

	data, err := json.Marshal(wrapper{P: HuggingFace})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"p":"huggingface"}` {
		t.Errorf("marshal = %s, want %s", data, `{"p":"huggingface"}`)
	}

	var got wrapper
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.P != HuggingFace {
		t.Errorf("unmarshal = %v, want %v", got.P, HuggingFace)
	}
}

func TestProvider_UnmarshalUnknownFails(t *testing.T) {
	t.Parallel()

	var p Provider
	err := p.UnmarshalText([]byte("nonsense"))
	if err == nil {
		t.Fatal("expected error unmarshaling unknown provider alias")
	}
}

func TestAllProviders_HasFourteen(t *testing.T) {
	t.Parallel()

	if len(AllProviders) != 14 {
		t.Errorf("len(AllProviders) = %d, want 14", len(AllProviders))
	}
}

func TestWorkload_StringRoundTrip(t *testing.T) {
	t.Parallel()

	workloads := []Workload{Chat, Summarization, Code, Extraction, Creative, Classification}
	for _, w := range workloads {
		s := w.String()
		got, ok := WorkloadFromString(s)
		if !ok || got != w {
			t.Errorf("WorkloadFromString(%q) = %v, %v, want %v, true", s, got, ok, w)
		}
	}
}

func TestWorkloadFromString_Unknown(t *testing.T) {
	t.Parallel()

	if _, ok := WorkloadFromString("unknown"); ok {
		t.Error("expected WorkloadFromString to reject an unknown workload")
	}
}

func TestRequest_ResolvedPrompt_NoContext(t *testing.T) {
	t.Parallel()

	req := Request{Prompt: "hello"}
	if got := req.ResolvedPrompt(); got != "hello" {
		t.Errorf("ResolvedPrompt() = %q, want %q", got, "hello")
	}
}

func TestRequest_ResolvedPrompt_WithContext(t *testing.T) {
	t.Parallel()

	req := Request{
		Prompt:  "What is the capital?",
		Context: []string{"France is in Europe.", "Paris is a city."},
	}
	want := "Context 1: France is in Europe.\nContext 2: Paris is a city.\nWhat is the capital?"
	if got := req.ResolvedPrompt(); got != want {
		t.Errorf("ResolvedPrompt() = %q, want %q", got, want)
	}
}

func TestRequest_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	req := Request{
		Model:  "gpt-4o",
		Prompt: "hi",
		Tags:   []string{"provider:openai"},
		Hints: Hints{
			Quality:  QualityPremium,
			Provider: "huggingface",
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Request
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Model != req.Model || got.Prompt != req.Prompt {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, req)
	}
	if got.Hints.Quality != QualityPremium || got.Hints.Provider != "huggingface" {
		t.Errorf("hints mismatch: got %+v", got.Hints)
	}
}

func TestResponse_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	resp := Response{Content: "42", Provider: "openai"}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Response
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != resp {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, resp)
	}
}
