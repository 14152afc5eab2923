package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Get("/status", g.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", g.handleGenerate())

		// Admin endpoints — auth required. Not mounted if no auth configured.
		if g.config.Auth.IsConfigured() {
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware(g.config.Auth, g.auditLogger, g.rateLimiter))
				r.Get("/config", g.handleGetConfig())
				r.Route("/catalog", func(r chi.Router) {
					r.Get("/models", g.handleListModels())
					r.Get("/suggestions", g.handleListSuggestions())
					r.Post("/models/adopt", g.handleAdoptModel())
					r.Post("/models/{provider}/{workload}/{model}/retire", g.handleRetireModel())
				})
			})
		}
	})

	return r
}
