// Package storage owns the gateway's embedded SQL database: opening the
// pool, creating the schema, and running additive migrations. Every other
// persistence-backed package (healthtrack, catalog, credential, usage)
// takes a *sql.DB from here rather than opening its own connection.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freegin-ai/gateway/internal/gatewayerr"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const (
	defaultBusyTimeout = 5000
	maxOpenConns       = 5
)

// Open creates (or opens) a SQLite database at path, enables WAL mode and a
// busy timeout, applies the schema, and runs additive migrations. The
// parent directory is created on demand. The caller owns the returned
// *sql.DB and must Close it.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, gatewayerr.NewConfigError("create database directory %s: %v", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, gatewayerr.NewDatabaseError(fmt.Sprintf("open %s", path), err)
	}

	db.SetMaxOpenConns(maxOpenConns)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, gatewayerr.NewDatabaseError("enable WAL", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, gatewayerr.NewDatabaseError("set busy_timeout", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
