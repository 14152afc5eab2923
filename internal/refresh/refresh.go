// Package refresh implements the gateway's LLM-assisted catalog refresh:
// ask a model, through the router itself, to suggest candidate models for
// a (provider, workload) pair given its current roster and usage stats,
// then record well-formed suggestions as pending catalog entries.
package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// Router is the subset of internal/provider.Router refresh depends on.
type Router interface {
	Generate(ctx context.Context, req provider.Request) (provider.Response, error)
}

// Catalog is the subset of internal/catalog.Store refresh depends on.
type Catalog interface {
	ActiveModels(ctx context.Context, p provider.Provider, w *provider.Workload) ([]catalog.ModelEntry, error)
	UsageStats(ctx context.Context, p provider.Provider, w *provider.Workload) (catalog.UsageStats, error)
	UpsertSuggestion(ctx context.Context, p provider.Provider, w provider.Workload, model, rationale, metadata, status string) error
}

// contextDocument is the JSON payload embedded in the refresh prompt,
// summarizing the current roster and call history for (provider, workload).
type contextDocument struct {
	Provider      string           `json:"provider"`
	Workload      string           `json:"workload"`
	CurrentModels []string         `json:"current_models"`
	UsageStats    usageStatsDigest `json:"usage_stats"`
}

type usageStatsDigest struct {
	TotalCalls   int64   `json:"total_calls"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// Suggestion is one candidate model the refresh prompt asked for and the
// response supplied in well-formed shape.
type Suggestion struct {
	Model           string `json:"model"`
	Workload        string `json:"workload"`
	Rationale       string `json:"rationale"`
	ProductionReady bool   `json:"production_ready"`
	Notes           string `json:"notes"`
	Metadata        string `json:"metadata"`
}

// Result is what a single Refresh call produced.
type Result struct {
	Provider    provider.Provider
	Workload    provider.Workload
	Suggestions []Suggestion
	DryRun      bool
	RawResponse string
}

const promptTemplate = `You are assisting with curating the model roster for an AI gateway.

Below is a JSON context document describing the current active models and
recent usage statistics for one (provider, workload) pair:

%s

Suggest 3 to 5 candidate models worth considering for this (provider,
workload) pair, beyond what is currently active. Respond with ONLY a JSON
array (no prose, no markdown fences) where each element has this exact
shape:

{"model": "<model identifier>", "workload": "<workload>", "rationale": "<short reason>", "production_ready": <true|false>, "notes": "<optional>", "metadata": "<optional>"}
`

// Refresh builds the context document for (p, w), asks router for
// suggestions with quality/format/guardrail hints favoring a careful,
// strictly-JSON reply, strict-parses the result, and — unless dryRun —
// upserts each well-formed suggestion as a pending catalog entry.
// A malformed JSON response returns *gatewayerr.ApiError with the raw
// response text included.
func Refresh(ctx context.Context, router Router, cat Catalog, p provider.Provider, w provider.Workload, dryRun bool) (Result, error) {
	active, err := cat.ActiveModels(ctx, p, &w)
	if err != nil {
		return Result{}, err
	}
	stats, err := cat.UsageStats(ctx, p, &w)
	if err != nil {
		return Result{}, err
	}

	models := make([]string, len(active))
	for i, m := range active {
		models[i] = m.Model
	}

	doc := contextDocument{
		Provider:      p.String(),
		Workload:      w.String(),
		CurrentModels: models,
		UsageStats: usageStatsDigest{
			TotalCalls:   stats.TotalCalls,
			SuccessRate:  stats.SuccessRate,
			AvgLatencyMS: stats.AvgLatencyMS,
		},
	}
	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Result{}, gatewayerr.NewApiError("refresh: marshal context document: %v", err)
	}

	prompt := fmt.Sprintf(promptTemplate, docJSON)
	resp, err := router.Generate(ctx, provider.Request{
		Prompt: prompt,
		Hints: provider.Hints{
			Quality:        provider.QualityPremium,
			ResponseFormat: provider.FormatJSON,
			Guardrail:      provider.GuardrailStrict,
			Workload:       &w,
		},
	})
	if err != nil {
		return Result{}, err
	}

	suggestions, err := parseSuggestions(resp.Content)
	if err != nil {
		return Result{}, gatewayerr.NewApiError("refresh: malformed suggestions response: %v (raw: %s)", err, resp.Content)
	}

	if !dryRun {
		for _, s := range suggestions {
			if err := cat.UpsertSuggestion(ctx, p, w, s.Model, s.Rationale, s.Metadata, "pending"); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{
		Provider:    p,
		Workload:    w,
		Suggestions: suggestions,
		DryRun:      dryRun,
		RawResponse: resp.Content,
	}, nil
}

// parseSuggestions strict-parses a JSON array of Suggestion objects,
// tolerating a response wrapped in markdown code fences (some models add
// them despite being told not to) but rejecting anything else malformed.
func parseSuggestions(raw string) ([]Suggestion, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var suggestions []Suggestion
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&suggestions); err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Model == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Interface guards: the concrete router and catalog types must satisfy
// the narrow interfaces this package depends on.
var (
	_ Router  = (*provider.Router)(nil)
	_ Catalog = (*catalog.Store)(nil)
)
