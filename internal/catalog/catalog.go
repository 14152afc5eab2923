// Package catalog implements the gateway's CatalogStore: the active model
// roster per (provider, workload), the suggestion lifecycle feeding it, and
// usage-statistics aggregation over recorded calls.
package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// ModelEntry is a row in the active roster or its retired history.
type ModelEntry struct {
	Provider  provider.Provider
	Workload  provider.Workload
	Model     string
	Status    string
	Priority  int64
	Rationale string
	Metadata  string
	CreatedAt string
	UpdatedAt string
}

// SuggestionEntry is a candidate model awaiting adoption or rejection.
type SuggestionEntry struct {
	ID        int64
	Provider  provider.Provider
	Workload  provider.Workload
	Model     string
	Status    string
	Rationale string
	Metadata  string
	CreatedAt string
	UpdatedAt string
}

// UsageStats summarizes recorded calls for a (provider, workload?) scope.
type UsageStats struct {
	TotalCalls      int64
	SuccessfulCalls int64
	SuccessRate     float64
	AvgLatencyMS    float64
	MaxLatencyMS    int64
}

// Store is the gateway's CatalogStore, backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New constructs a Store over db, which must already have the schema from
// internal/storage applied.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nowStr() string {
	return s.now().UTC().Format(time.RFC3339)
}

// ListModels returns active-roster entries, optionally filtered by
// provider and/or workload, ordered by (provider, workload, priority ASC,
// updated_at DESC).
func (s *Store) ListModels(ctx context.Context, p *provider.Provider, w *provider.Workload) ([]ModelEntry, error) {
	query := `SELECT provider, workload, model, status, priority, rationale, metadata, created_at, updated_at
		FROM provider_models`
	var clauses []string
	var args []any
	if p != nil {
		clauses = append(clauses, "provider = ?")
		args = append(args, p.String())
	}
	if w != nil {
		clauses = append(clauses, "workload = ?")
		args = append(args, w.String())
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY provider, workload, priority ASC, updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gatewayerr.NewDatabaseError("list models", err)
	}
	defer rows.Close()
	return scanModelEntries(rows)
}

// ActiveModels returns status='active' rows for provider, optionally
// restricted to workload, ordered by (priority ASC, updated_at DESC).
func (s *Store) ActiveModels(ctx context.Context, p provider.Provider, w *provider.Workload) ([]ModelEntry, error) {
	query := `SELECT provider, workload, model, status, priority, rationale, metadata, created_at, updated_at
		FROM provider_models WHERE status = 'active' AND provider = ?`
	args := []any{p.String()}
	if w != nil {
		query += " AND workload = ?"
		args = append(args, w.String())
	}
	query += " ORDER BY priority ASC, updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gatewayerr.NewDatabaseError("list active models", err)
	}
	defer rows.Close()
	return scanModelEntries(rows)
}

// FirstActiveModel returns the highest-priority active model for
// (p, w), satisfying provider.CatalogStore. ok is false when none exists.
func (s *Store) FirstActiveModel(ctx context.Context, p provider.Provider, w provider.Workload) (string, bool, error) {
	entries, err := s.ActiveModels(ctx, p, &w)
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Model, true, nil
}

// AdoptModel upserts (p, w, model) into the active roster and transitions
// any matching suggestion row to status='adopted'.
func (s *Store) AdoptModel(ctx context.Context, p provider.Provider, w provider.Workload, model, rationale, metadata string, priority int64) error {
	now := s.nowStr()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_models (provider, workload, model, status, priority, rationale, metadata, created_at, updated_at)
		VALUES (?, ?, ?, 'active', ?, ?, ?, ?, ?)
		ON CONFLICT(provider, workload, model) DO UPDATE SET
			status = 'active',
			priority = excluded.priority,
			rationale = excluded.rationale,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, p.String(), w.String(), model, priority, nullIfEmpty(rationale), nullIfEmpty(metadata), now, now)
	if err != nil {
		return gatewayerr.NewDatabaseError("adopt model", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE provider_model_suggestions SET status = 'adopted', updated_at = ?
		WHERE provider = ? AND workload = ? AND model = ?
	`, now, p.String(), w.String(), model)
	if err != nil {
		return gatewayerr.NewDatabaseError("mark suggestion adopted", err)
	}
	return nil
}

// RetireModel sets (p, w, model)'s status to 'retired'. Returns whether a
// row changed.
func (s *Store) RetireModel(ctx context.Context, p provider.Provider, w provider.Workload, model string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE provider_models SET status = 'retired', updated_at = ?
		WHERE provider = ? AND workload = ? AND model = ?
	`, s.nowStr(), p.String(), w.String(), model)
	if err != nil {
		return false, gatewayerr.NewDatabaseError("retire model", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, gatewayerr.NewDatabaseError("retire model rows affected", err)
	}
	return n > 0, nil
}

// ListSuggestions returns suggestion rows, optionally filtered by provider
// and/or workload, ordered by (status ASC, created_at DESC).
func (s *Store) ListSuggestions(ctx context.Context, p *provider.Provider, w *provider.Workload) ([]SuggestionEntry, error) {
	query := `SELECT id, provider, workload, model, status, rationale, metadata, created_at, updated_at
		FROM provider_model_suggestions`
	var clauses []string
	var args []any
	if p != nil {
		clauses = append(clauses, "provider = ?")
		args = append(args, p.String())
	}
	if w != nil {
		clauses = append(clauses, "workload = ?")
		args = append(args, w.String())
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY status ASC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gatewayerr.NewDatabaseError("list suggestions", err)
	}
	defer rows.Close()

	var out []SuggestionEntry
	for rows.Next() {
		var (
			e                   SuggestionEntry
			providerStr         string
			workloadStr         string
			rationale, metadata sql.NullString
		)
		if err := rows.Scan(&e.ID, &providerStr, &workloadStr, &e.Model, &e.Status, &rationale, &metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, gatewayerr.NewDatabaseError("scan suggestion", err)
		}
		e.Provider = providerOrZero(providerStr)
		e.Workload, _ = provider.WorkloadFromString(workloadStr)
		e.Rationale = rationale.String
		e.Metadata = metadata.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, gatewayerr.NewDatabaseError("iterate suggestions", err)
	}
	return out, nil
}

// UpsertSuggestion inserts or updates a suggestion keyed by (p, w, model).
func (s *Store) UpsertSuggestion(ctx context.Context, p provider.Provider, w provider.Workload, model, rationale, metadata, status string) error {
	now := s.nowStr()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_model_suggestions (provider, workload, model, status, rationale, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider, workload, model) DO UPDATE SET
			status = excluded.status,
			rationale = excluded.rationale,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, p.String(), w.String(), model, status, nullIfEmpty(rationale), nullIfEmpty(metadata), now, now)
	if err != nil {
		return gatewayerr.NewDatabaseError("upsert suggestion", err)
	}
	return nil
}

// UsageStats aggregates provider_usage rows for provider, optionally
// restricted to models presently registered under (provider, workload).
func (s *Store) UsageStats(ctx context.Context, p provider.Provider, w *provider.Workload) (UsageStats, error) {
	query := `SELECT
		COUNT(*) as total_calls,
		SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as successful_calls,
		AVG(latency_ms) as avg_latency,
		MAX(latency_ms) as max_latency
		FROM provider_usage WHERE provider = ?`
	args := []any{p.String()}
	if w != nil {
		query += ` AND model IN (SELECT model FROM provider_models WHERE provider = ? AND workload = ?)`
		args = append(args, p.String(), w.String())
	}

	var (
		total, successful int64
		avgLatency        sql.NullFloat64
		maxLatency        sql.NullInt64
	)
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&total, &successful, &avgLatency, &maxLatency); err != nil {
		return UsageStats{}, gatewayerr.NewDatabaseError("usage stats", err)
	}

	var rate float64
	if total > 0 {
		rate = (float64(successful) / float64(total)) * 100.0
	}
	return UsageStats{
		TotalCalls:      total,
		SuccessfulCalls: successful,
		SuccessRate:     rate,
		AvgLatencyMS:    avgLatency.Float64,
		MaxLatencyMS:    maxLatency.Int64,
	}, nil
}

func scanModelEntries(rows *sql.Rows) ([]ModelEntry, error) {
	var out []ModelEntry
	for rows.Next() {
		var (
			e                   ModelEntry
			providerStr         string
			workloadStr         string
			rationale, metadata sql.NullString
		)
		if err := rows.Scan(&providerStr, &workloadStr, &e.Model, &e.Status, &e.Priority, &rationale, &metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, gatewayerr.NewDatabaseError("scan model entry", err)
		}
		e.Provider = providerOrZero(providerStr)
		e.Workload, _ = provider.WorkloadFromString(workloadStr)
		e.Rationale = rationale.String
		e.Metadata = metadata.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, gatewayerr.NewDatabaseError("iterate model entries", err)
	}
	return out, nil
}

func providerOrZero(s string) provider.Provider {
	p, ok := provider.FromAlias(s)
	if !ok {
		return 0
	}
	return p
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Interface guard: Store must satisfy provider.CatalogStore.
var _ provider.CatalogStore = (*Store)(nil)
