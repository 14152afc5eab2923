package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/security"
)

// handleGenerate handles POST /api/v1/generate: decode a provider.Request,
// route it through the router, and return the provider.Response. The
// router is consumed as a library here, never reimplemented.
func (g *Gateway) handleGenerate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.router == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no router configured"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, security.DefaultMaxMessageSize+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading request body: " + err.Error()})
			return
		}
		if err := security.ValidateMessageSize(body, security.DefaultMaxMessageSize); err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		if err := security.ValidateJSONDepth(body, security.DefaultMaxJSONDepth); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		var req provider.Request
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
			return
		}

		start := time.Now()
		resp, err := g.router.Generate(r.Context(), req)
		latency := time.Since(start)
		if err != nil {
			g.metrics.RecordError(req.Hints.Provider)
			status := http.StatusBadGateway
			var noProvider *gatewayerr.NoProviderAvailable
			if errors.As(err, &noProvider) {
				status = http.StatusServiceUnavailable
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		// Token counts are not part of the provider.Response envelope.
		g.metrics.RecordCompletion(resp.Provider, 0, latency)
		writeJSON(w, http.StatusOK, resp)
	}
}
