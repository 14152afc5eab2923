package storage

import (
	"context"
	"database/sql"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
)

// baseTables are created with IF NOT EXISTS, making schema creation
// idempotent across restarts.
var baseTables = []string{
	`CREATE TABLE IF NOT EXISTS provider_credentials (
		provider   TEXT PRIMARY KEY,
		nonce      BLOB NOT NULL,
		ciphertext BLOB NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS provider_usage (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		provider      TEXT NOT NULL,
		success       INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		error_message TEXT,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS provider_models (
		provider   TEXT NOT NULL,
		workload   TEXT NOT NULL,
		model      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		priority   INTEGER NOT NULL DEFAULT 100,
		rationale  TEXT,
		metadata   TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (provider, workload, model)
	)`,

	`CREATE TABLE IF NOT EXISTS provider_model_suggestions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		provider   TEXT NOT NULL,
		workload   TEXT NOT NULL,
		model      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		rationale  TEXT,
		metadata   TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (provider, workload, model)
	)`,

	`CREATE TABLE IF NOT EXISTS provider_health (
		provider             TEXT PRIMARY KEY,
		status               TEXT NOT NULL DEFAULT 'available',
		last_error           TEXT,
		last_error_at        TEXT,
		retry_after          TEXT,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		last_success_at      TEXT,
		updated_at           TEXT NOT NULL
	)`,
}

var baseIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_provider_models_lookup
		ON provider_models(provider, workload, status, priority)`,
	`CREATE INDEX IF NOT EXISTS idx_provider_suggestions_lookup
		ON provider_model_suggestions(provider, workload, status)`,
	`CREATE INDEX IF NOT EXISTS idx_provider_usage_lookup
		ON provider_usage(provider, model, created_at)`,
}

// usageColumns are additive columns on provider_usage introduced after the
// base table shape. Each is probed with a cheap SELECT ... LIMIT 1 before
// being added, so Migrate stays idempotent without a schema_version table
// for this particular table.
var usageColumns = []struct {
	name string
	ddl  string
}{
	{"model", "ALTER TABLE provider_usage ADD COLUMN model TEXT"},
	{"prompt_tokens", "ALTER TABLE provider_usage ADD COLUMN prompt_tokens INTEGER"},
	{"completion_tokens", "ALTER TABLE provider_usage ADD COLUMN completion_tokens INTEGER"},
	{"total_tokens", "ALTER TABLE provider_usage ADD COLUMN total_tokens INTEGER"},
	{"input_cost_micros", "ALTER TABLE provider_usage ADD COLUMN input_cost_micros INTEGER"},
	{"output_cost_micros", "ALTER TABLE provider_usage ADD COLUMN output_cost_micros INTEGER"},
	{"total_cost_micros", "ALTER TABLE provider_usage ADD COLUMN total_cost_micros INTEGER"},
}

// Migrate creates the schema if missing and applies additive column
// migrations to provider_usage. Safe to call on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range baseTables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return gatewayerr.NewDatabaseError("create schema", err)
		}
	}
	for _, stmt := range baseIndexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return gatewayerr.NewDatabaseError("create index", err)
		}
	}
	for _, col := range usageColumns {
		if hasColumn(ctx, db, "provider_usage", col.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, col.ddl); err != nil {
			return gatewayerr.NewDatabaseError("add provider_usage."+col.name, err)
		}
	}
	return nil
}

// hasColumn probes for a column's existence by attempting to select it.
// SQLite has no cheap information_schema equivalent in the stdlib driver,
// so this follows the spec's probe pattern: a failing SELECT means the
// column is absent.
func hasColumn(ctx context.Context, db *sql.DB, table, column string) bool {
	row := db.QueryRowContext(ctx, "SELECT "+column+" FROM "+table+" LIMIT 1")
	var discard sql.NullString
	err := row.Scan(&discard)
	return err == nil || err == sql.ErrNoRows
}
