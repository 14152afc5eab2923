// Package healthtrack implements the gateway's HealthTracker: per-provider
// availability bookkeeping backed by SQLite, with error classification and
// exponential backoff driving a tri-state (available/degraded/unavailable)
// status.
package healthtrack

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// Status is a provider's current health classification.
type Status string

const (
	Available   Status = "available"
	Degraded    Status = "degraded"
	Unavailable Status = "unavailable"
)

// ProviderHealth is the persisted health row for one provider.
type ProviderHealth struct {
	Provider            provider.Provider
	Status              Status
	LastError           string
	LastErrorAt         *time.Time
	RetryAfter          *time.Time
	ConsecutiveFailures int64
	LastSuccessAt       *time.Time
	UpdatedAt           time.Time
}

// Tracker is the gateway's HealthTracker, satisfying provider.HealthTracker
// structurally. The zero value is not usable; construct with New.
type Tracker struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the tracker's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger injects a structured logger for persistence-failure
// diagnostics. Defaults to discarding all output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New constructs a Tracker over db, which must already have the schema
// from internal/storage applied.
func New(db *sql.DB, opts ...Option) *Tracker {
	t := &Tracker{db: db, now: time.Now, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordSuccess marks provider as available and resets its failure streak.
// Historical last_error fields are left untouched.
func (t *Tracker) RecordSuccess(ctx context.Context, p provider.Provider) {
	now := t.now().UTC().Format(time.RFC3339)
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO provider_health (provider, status, consecutive_failures, last_success_at, updated_at)
		VALUES (?, 'available', 0, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			status = 'available',
			consecutive_failures = 0,
			last_success_at = excluded.last_success_at,
			updated_at = excluded.updated_at
	`, p.String(), now, now)
	if err != nil {
		// Bookkeeping failures must never surface to the caller or block
		// the router's fallback walk.
		t.logger.Warn("failed to record provider success", "provider", p.String(), "error", err)
	}
}

// RecordFailure classifies errMsg, updates provider's status and backoff
// window, and increments its consecutive-failure count.
func (t *Tracker) RecordFailure(ctx context.Context, p provider.Provider, errMsg string) {
	now := t.now().UTC()
	class := classify(errMsg)

	// The backoff for rate limits depends on the post-increment failure
	// count, which SQL computes declaratively inside the upsert. Since the
	// retry_after value must be computed in Go (time.Time arithmetic, not
	// SQL), read the current count first and add one locally; this is
	// consistent with what the ON CONFLICT clause will compute, short of a
	// concurrent writer racing the same provider (acceptable: backoff is
	// advisory, not a correctness boundary).
	var priorFailures int64
	_ = t.db.QueryRowContext(ctx,
		`SELECT consecutive_failures FROM provider_health WHERE provider = ?`, p.String(),
	).Scan(&priorFailures)

	status := class.status()
	retryAfter := class.retryAfter(now, priorFailures+1)
	retryStr := retryAfter.UTC().Format(time.RFC3339)
	nowStr := now.Format(time.RFC3339)

	_, err := t.db.ExecContext(ctx, `
		INSERT INTO provider_health
			(provider, status, last_error, last_error_at, retry_after, consecutive_failures, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(provider) DO UPDATE SET
			status = excluded.status,
			last_error = excluded.last_error,
			last_error_at = excluded.last_error_at,
			retry_after = excluded.retry_after,
			consecutive_failures = provider_health.consecutive_failures + 1,
			updated_at = excluded.updated_at
	`, p.String(), string(status), errMsg, nowStr, retryStr, nowStr)
	if err != nil {
		t.logger.Warn("failed to record provider failure", "provider", p.String(), "error", err)
	}
}

// IsAvailable reports whether p may currently be routed to: true when no
// health row exists, the provider is available, or its backoff window has
// elapsed. A degraded provider with no retry_after set is treated as
// available.
func (t *Tracker) IsAvailable(ctx context.Context, p provider.Provider) bool {
	health, err := t.GetHealth(ctx, p)
	if err != nil {
		// Persistence trouble must never block routing; fail open.
		return true
	}
	switch health.Status {
	case Available:
		return true
	default:
		if health.RetryAfter != nil {
			return !t.now().Before(*health.RetryAfter)
		}
		return health.Status == Degraded
	}
}

// GetHealth returns the persisted health row for p, or a synthetic
// available record with zeroed fields when none exists.
func (t *Tracker) GetHealth(ctx context.Context, p provider.Provider) (ProviderHealth, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT status, last_error, last_error_at, retry_after, consecutive_failures, last_success_at, updated_at
		FROM provider_health WHERE provider = ?
	`, p.String())

	var (
		status              string
		lastError           sql.NullString
		lastErrorAt         sql.NullString
		retryAfter          sql.NullString
		consecutiveFailures int64
		lastSuccessAt       sql.NullString
		updatedAt           sql.NullString
	)
	err := row.Scan(&status, &lastError, &lastErrorAt, &retryAfter, &consecutiveFailures, &lastSuccessAt, &updatedAt)
	if err == sql.ErrNoRows {
		return ProviderHealth{Provider: p, Status: Available}, nil
	}
	if err != nil {
		return ProviderHealth{}, gatewayerr.NewDatabaseError("get provider health", err)
	}

	h := ProviderHealth{
		Provider:            p,
		Status:              Status(status),
		LastError:           lastError.String,
		ConsecutiveFailures: consecutiveFailures,
	}
	h.LastErrorAt = parseTimePtr(lastErrorAt)
	h.RetryAfter = parseTimePtr(retryAfter)
	h.LastSuccessAt = parseTimePtr(lastSuccessAt)
	if updatedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
			h.UpdatedAt = ts
		}
	}
	return h, nil
}

// GetAllHealth returns a health row (synthetic or persisted) for every
// canonical provider in provider.AllProviders.
func (t *Tracker) GetAllHealth(ctx context.Context) ([]ProviderHealth, error) {
	out := make([]ProviderHealth, 0, len(provider.AllProviders))
	for _, p := range provider.AllProviders {
		h, err := t.GetHealth(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &ts
}

// Interface guard: Tracker must satisfy provider.HealthTracker.
var _ provider.HealthTracker = (*Tracker)(nil)
