package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/config"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/go-chi/chi/v5"
)

// CatalogStore is the subset of internal/catalog.Store the gateway's admin
// endpoints depend on.
type CatalogStore interface {
	ListModels(ctx context.Context, p *provider.Provider, w *provider.Workload) ([]catalog.ModelEntry, error)
	ListSuggestions(ctx context.Context, p *provider.Provider, w *provider.Workload) ([]catalog.SuggestionEntry, error)
	AdoptModel(ctx context.Context, p provider.Provider, w provider.Workload, model, rationale, metadata string, priority int64) error
	RetireModel(ctx context.Context, p provider.Provider, w provider.Workload, model string) (bool, error)
}

// modelEntryJSON is a serializable catalog.ModelEntry.
type modelEntryJSON struct {
	Provider  string `json:"provider"`
	Workload  string `json:"workload"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	Priority  int64  `json:"priority"`
	Rationale string `json:"rationale,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func modelEntryToJSON(e catalog.ModelEntry) modelEntryJSON {
	return modelEntryJSON{
		Provider:  e.Provider.String(),
		Workload:  e.Workload.String(),
		Model:     e.Model,
		Status:    e.Status,
		Priority:  e.Priority,
		Rationale: e.Rationale,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// suggestionEntryJSON is a serializable catalog.SuggestionEntry.
type suggestionEntryJSON struct {
	ID        int64  `json:"id"`
	Provider  string `json:"provider"`
	Workload  string `json:"workload"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	Rationale string `json:"rationale,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func suggestionEntryToJSON(e catalog.SuggestionEntry) suggestionEntryJSON {
	return suggestionEntryJSON{
		ID:        e.ID,
		Provider:  e.Provider.String(),
		Workload:  e.Workload.String(),
		Model:     e.Model,
		Status:    e.Status,
		Rationale: e.Rationale,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// parseOptionalProviderWorkload reads the "provider" and "workload" query
// parameters, if present, into filter pointers for a catalog query.
func parseOptionalProviderWorkload(r *http.Request) (p *provider.Provider, w *provider.Workload, ok bool, errMsg string) {
	if raw := r.URL.Query().Get("provider"); raw != "" {
		got, found := provider.FromAlias(raw)
		if !found {
			return nil, nil, false, "unknown provider: " + raw
		}
		p = &got
	}
	if raw := r.URL.Query().Get("workload"); raw != "" {
		got, found := provider.WorkloadFromString(raw)
		if !found {
			return nil, nil, false, "unknown workload: " + raw
		}
		w = &got
	}
	return p, w, true, ""
}

// handleListModels handles GET /api/v1/catalog/models, optionally filtered
// by ?provider= and ?workload= query parameters.
func (g *Gateway) handleListModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.catalog == nil {
			writeJSON(w, http.StatusOK, []modelEntryJSON{})
			return
		}
		pp, wp, ok, errMsg := parseOptionalProviderWorkload(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		entries, err := g.catalog.ListModels(r.Context(), pp, wp)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out := make([]modelEntryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, modelEntryToJSON(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleListSuggestions handles GET /api/v1/catalog/suggestions, optionally
// filtered by ?provider= and ?workload= query parameters.
func (g *Gateway) handleListSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.catalog == nil {
			writeJSON(w, http.StatusOK, []suggestionEntryJSON{})
			return
		}
		pp, wp, ok, errMsg := parseOptionalProviderWorkload(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		entries, err := g.catalog.ListSuggestions(r.Context(), pp, wp)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out := make([]suggestionEntryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, suggestionEntryToJSON(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// adoptModelRequest is the JSON body for POST /api/v1/catalog/models/adopt.
type adoptModelRequest struct {
	Provider  string `json:"provider"`
	Workload  string `json:"workload"`
	Model     string `json:"model"`
	Rationale string `json:"rationale,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
	Priority  int64  `json:"priority,omitempty"`
}

// handleAdoptModel handles POST /api/v1/catalog/models/adopt: promotes a
// model (typically a prior suggestion) into the active roster.
func (g *Gateway) handleAdoptModel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.catalog == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no catalog store configured"})
			return
		}

		var req adoptModelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		p, ok := provider.FromAlias(req.Provider)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown provider: " + req.Provider})
			return
		}
		wl, ok := provider.WorkloadFromString(req.Workload)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown workload: " + req.Workload})
			return
		}
		if req.Model == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "model is required"})
			return
		}

		if err := g.catalog.AdoptModel(r.Context(), p, wl, req.Model, req.Rationale, req.Metadata, req.Priority); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "adopted"})
	}
}

// handleRetireModel handles POST /api/v1/catalog/models/{provider}/{workload}/{model}/retire.
func (g *Gateway) handleRetireModel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.catalog == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no catalog store configured"})
			return
		}

		p, ok := provider.FromAlias(chi.URLParam(r, "provider"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown provider"})
			return
		}
		wl, ok := provider.WorkloadFromString(chi.URLParam(r, "workload"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown workload"})
			return
		}
		model := chi.URLParam(r, "model")

		found, err := g.catalog.RetireModel(r.Context(), p, wl, model)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found in active roster"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "retired"})
	}
}

// secretPattern matches config keys that likely contain secrets.
var secretPattern = regexp.MustCompile(`(?i)(secret|token|password|key|api_key)`)

// handleGetConfig returns the current configuration with secrets redacted.
func (g *Gateway) handleGetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.configPath == "" {
			http.Error(w, "config path not set", http.StatusServiceUnavailable)
			return
		}

		cfg, err := config.Load(g.configPath)
		if err != nil {
			http.Error(w, "failed to load config", http.StatusInternalServerError)
			return
		}

		raw, err := json.Marshal(cfg)
		if err != nil {
			http.Error(w, "failed to serialize config", http.StatusInternalServerError)
			return
		}

		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			http.Error(w, "failed to parse config", http.StatusInternalServerError)
			return
		}

		redactSecrets(generic)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generic)
	}
}

// redactSecrets walks a map and replaces values whose keys match the secret pattern.
func redactSecrets(m map[string]any) {
	for k, v := range m {
		if secretPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				m[k] = "***REDACTED***"
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			redactSecrets(val)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					redactSecrets(sub)
				}
			}
		}
	}
}
