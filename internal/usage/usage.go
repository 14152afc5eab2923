// Package usage implements the gateway's UsageLogger: append-only
// recording of completed generation attempts for catalog statistics and
// cost observability.
package usage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/freegin-ai/gateway/internal/provider"
)

// Record is a single completed (or failed) generation attempt, extended
// beyond the router's minimal UsageRecord with token/cost fields that
// adapters may optionally report.
type Record struct {
	Provider         provider.Provider
	Model            string
	Success          bool
	LatencyMS        int64
	ErrorMessage     string
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
	InputCostMicros  *int64
	OutputCostMicros *int64
	TotalCostMicros  *int64
}

// Logger is the gateway's UsageLogger, backed by SQLite.
type Logger struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the logger's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithLogger injects a structured logger for persistence-failure
// diagnostics. Defaults to discarding all output.
func WithLogger(sl *slog.Logger) Option {
	return func(l *Logger) { l.logger = sl }
}

// New constructs a Logger over db, which must already have the schema
// from internal/storage applied.
func New(db *sql.DB, opts ...Option) *Logger {
	l := &Logger{db: db, now: time.Now, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogDetailed persists rec as a new provider_usage row, including any
// token/cost fields an adapter reported. Failures are logged and
// swallowed since usage logging must never block a generation response.
func (l *Logger) LogDetailed(ctx context.Context, rec Record) {
	now := l.now().UTC().Format(time.RFC3339)
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO provider_usage
			(provider, model, success, latency_ms, error_message,
			 prompt_tokens, completion_tokens, total_tokens,
			 input_cost_micros, output_cost_micros, total_cost_micros, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Provider.String(), nullIfEmpty(rec.Model), boolToInt(rec.Success), rec.LatencyMS, nullIfEmpty(rec.ErrorMessage),
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
		rec.InputCostMicros, rec.OutputCostMicros, rec.TotalCostMicros, now,
	)
	if err != nil {
		l.logger.Warn("failed to persist usage record", "provider", rec.Provider.String(), "error", err)
	}
}

// Log adapts a provider.UsageRecord (the router's minimal shape) into a
// full Record and persists it, satisfying provider.UsageLogger.
func (l *Logger) Log(ctx context.Context, rec provider.UsageRecord) {
	l.LogDetailed(ctx, Record{
		Provider:     rec.Provider,
		Model:        rec.Model,
		Success:      rec.Success,
		LatencyMS:    rec.LatencyMS,
		ErrorMessage: rec.ErrorMessage,
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Interface guard: Logger must satisfy provider.UsageLogger.
var _ provider.UsageLogger = (*Logger)(nil)
