// Package gateway provides the gateway's thin HTTP surface: generation,
// health, status, and admin-auth-gated catalog/config endpoints. It
// consumes the router, health tracker, and catalog store as collaborators
// and owns no persistent state of its own.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/security"
)

// Router is the subset of internal/provider.Router the gateway depends on.
type Router interface {
	Generate(ctx context.Context, req provider.Request) (provider.Response, error)
}

// HealthTracker is the subset of internal/healthtrack.Tracker the gateway
// depends on.
type HealthTracker interface {
	GetAllHealth(ctx context.Context) ([]healthtrack.ProviderHealth, error)
}

// Gateway is the HTTP surface over the router, health tracker, and catalog
// store. It holds no database handle itself.
type Gateway struct {
	config     Config
	configPath string
	logger     *slog.Logger
	server     *http.Server
	metrics    *Metrics
	startedAt  time.Time

	router      Router
	health      HealthTracker
	catalog     CatalogStore
	auditLogger *security.AuditLogger
	rateLimiter *security.RateLimiter
}

// New constructs a Gateway. router, health, and catalog may be nil — the
// corresponding endpoints degrade gracefully (generate returns 503, health
// reports "ok" with no providers, catalog admin endpoints report empty).
// configPath, if non-empty, backs GET /api/v1/config.
func New(cfg Config, configPath string, router Router, health HealthTracker, catalog CatalogStore, auditLogger *security.AuditLogger, rateLimiter *security.RateLimiter, logger *slog.Logger) *Gateway {
	cfg.defaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		config:      cfg,
		configPath:  configPath,
		logger:      logger,
		metrics:     NewMetrics(),
		router:      router,
		health:      health,
		catalog:     catalog,
		auditLogger: auditLogger,
		rateLimiter: rateLimiter,
	}
}

// Start binds the listener and begins serving in the background. Returns
// once the listener is bound; serve errors are logged asynchronously.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the HTTP server down within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
