package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/freegin-ai/gateway/internal/healthtrack"
)

// providerHealthJSON is a serializable view of one provider's health record.
type providerHealthJSON struct {
	Provider            string `json:"provider"`
	Status              string `json:"status"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error,omitempty"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string               `json:"status"` // "ok" or "degraded"
	Providers []providerHealthJSON `json:"providers,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health. Responds 200 if
// every tracked provider is available or degraded, 503 if any is
// unavailable.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.health != nil {
			all, err := g.health.GetAllHealth(r.Context())
			if err != nil {
				http.Error(w, "failed to read health state", http.StatusInternalServerError)
				return
			}
			resp.Providers = make([]providerHealthJSON, 0, len(all))
			for _, h := range all {
				resp.Providers = append(resp.Providers, providerHealthJSON{
					Provider:            h.Provider.String(),
					Status:              string(h.Status),
					ConsecutiveFailures: h.ConsecutiveFailures,
					LastError:           h.LastError,
				})
				if h.Status == healthtrack.Unavailable {
					resp.Status = "degraded"
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
