package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds float64              `json:"uptime_seconds"`
	Metrics       MetricsSnapshot      `json:"metrics"`
	Providers     []providerHealthJSON `json:"providers,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: time.Since(g.startedAt).Truncate(time.Second).Seconds(),
			Metrics:       g.metrics.Snapshot(),
		}

		if g.health != nil {
			all, err := g.health.GetAllHealth(r.Context())
			if err == nil {
				resp.Providers = make([]providerHealthJSON, 0, len(all))
				for _, h := range all {
					resp.Providers = append(resp.Providers, providerHealthJSON{
						Provider:            h.Provider.String(),
						Status:              string(h.Status),
						ConsecutiveFailures: h.ConsecutiveFailures,
						LastError:           h.LastError,
					})
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
