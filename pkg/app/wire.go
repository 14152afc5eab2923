package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/freegin-ai/gateway/internal/adapter"
	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/config"
	"github.com/freegin-ai/gateway/internal/credential"
	"github.com/freegin-ai/gateway/internal/cron"
	"github.com/freegin-ai/gateway/internal/gateway"
	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/healthtrack"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/refresh"
	"github.com/freegin-ai/gateway/internal/security"
	"github.com/freegin-ai/gateway/internal/storage"
	"github.com/freegin-ai/gateway/internal/usage"
)

// App bundles every wired component the gateway binary runs: the database
// handle, the HTTP surface, and the background scheduler. All three share
// the same lifetime — Close tears them down in reverse build order.
type App struct {
	DB        *sql.DB
	Gateway   *gateway.Gateway
	Scheduler *cron.Scheduler
	Credstore *credential.Store
	Router    *provider.Router
	Catalog   *catalog.Store

	logger *slog.Logger
}

// dbPathFromURL strips the "sqlite:" scheme storage.Open doesn't expect.
// database.url uses the sqlite: URI scheme per configuration convention;
// storage.Open wants a bare filesystem path.
func dbPathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite:")
}

// resolveAPIKey prefers a non-empty key from static config; otherwise it
// falls back to the CredentialStore. Providers with neither are skipped by
// the caller.
func resolveAPIKey(ctx context.Context, store *credential.Store, p provider.Provider, staticKey string) (string, bool, error) {
	if staticKey != "" {
		return staticKey, true, nil
	}
	return store.Get(ctx, p)
}

// Wire constructs every collaborator the gateway needs from cfg: storage,
// credential/health/catalog/usage stores, per-provider adapters, the
// router, the HTTP gateway, and the background scheduler. configPath is
// threaded through to the gateway so GET /api/v1/config can reload and
// redact it on demand.
func Wire(cfg *config.Config, configPath string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := storage.Open(dbPathFromURL(cfg.Database.URL))
	if err != nil {
		return nil, err
	}

	credStore, err := credential.New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	healthTracker := healthtrack.New(db, healthtrack.WithLogger(logger))
	catalogStore := catalog.New(db)
	usageLogger := usage.New(db, usage.WithLogger(logger))

	resolved, err := config.ResolveProviders(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx := context.Background()
	httpClient := &http.Client{}

	adapters := make(map[provider.Provider]provider.Adapter, len(resolved))
	order := make([]provider.Provider, 0, len(resolved))
	redactor := security.NewRedactor()

	for _, rp := range resolved {
		key, ok, err := resolveAPIKey(ctx, credStore, rp.Provider, rp.Config.APIKey)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if !ok {
			logger.Warn("provider has no credential configured, skipping", "provider", rp.Provider.String())
			continue
		}
		redactor.SyncSecrets([]string{key})

		a, err := adapter.New(rp.Provider, key, rp.Config.APIBaseURL, httpClient)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		adapters[rp.Provider] = a
		order = append(order, rp.Provider)
	}

	if len(adapters) == 0 {
		_ = db.Close()
		return nil, gatewayerr.NewConfigError("no providers have a usable credential")
	}

	router, err := provider.NewRouter(adapters, order,
		provider.WithHealthTracker(healthTracker),
		provider.WithCatalogStore(catalogStore),
		provider.WithUsageLogger(usageLogger),
		provider.WithRouterLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auditLogger := security.NewAuditLogger(security.AuditLoggerConfig{
		Redactor: redactor,
	})
	rateLimiter := security.NewRateLimiter(cfg.Security.RateLimits)

	gwConfig := gateway.Config{
		Bind: cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Auth: gateway.AuthConfig{
			BearerToken: cfg.Auth.BearerToken,
			BasicUser:   cfg.Auth.BasicUser,
			BasicPass:   cfg.Auth.BasicPass,
		},
	}
	gw := gateway.New(gwConfig, configPath, router, healthTracker, catalogStore, auditLogger, rateLimiter, logger)

	scheduler, err := wireScheduler(cfg, logger, router, catalogStore, healthTracker)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		DB:        db,
		Gateway:   gw,
		Scheduler: scheduler,
		Credstore: credStore,
		Router:    router,
		Catalog:   catalogStore,
		logger:    logger,
	}, nil
}

// wireScheduler builds the cron scheduler with the catalog-refresh and
// health-sweep jobs bound to the already-constructed router and catalog
// store.
func wireScheduler(cfg *config.Config, logger *slog.Logger, router *provider.Router, catalogStore *catalog.Store, healthTracker *healthtrack.Tracker) (*cron.Scheduler, error) {
	scheduler := cron.NewScheduler(logger)

	refreshFn := func(ctx context.Context, p provider.Provider, w provider.Workload, dryRun bool) (refresh.Result, error) {
		return refresh.Refresh(ctx, router, catalogStore, p, w, dryRun)
	}

	if err := scheduler.RegisterJob(&cron.CatalogRefreshJob{
		Logger:       logger,
		Catalog:      catalogStore,
		Refresh:      refreshFn,
		ScheduleExpr: cfg.Cron.CatalogRefreshInterval,
	}); err != nil {
		return nil, err
	}

	if err := scheduler.RegisterJob(&cron.HealthSweepJob{
		Logger:       logger,
		Health:       healthTracker,
		ScheduleExpr: cfg.Cron.HealthSweepInterval,
	}); err != nil {
		return nil, err
	}

	return scheduler, nil
}

// Close releases the database handle. The gateway and scheduler are
// stopped separately by the caller's run loop, which needs finer control
// over shutdown ordering and timeouts.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
