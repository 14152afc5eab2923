// Package credential implements the gateway's CredentialStore: at-rest
// encryption of provider API keys using XChaCha20-Poly1305, with a
// master key persisted to a user-config file created on first use.
package credential

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

const (
	keyFileName = "secret.key"
	keySize     = chacha20poly1305.KeySize    // 32
	nonceSize   = chacha20poly1305.NonceSizeX // 24
)

// Store is the gateway's CredentialStore: provider API keys encrypted
// at rest in SQLite under a master key whose only copy lives in a
// restricted-permission file under the user's config directory.
type Store struct {
	db     *sql.DB
	cipher cipher.AEAD
	now    func() time.Time
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	now        func() time.Time
	keyDirPath string
}

// WithClock overrides the store's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) { c.now = now }
}

// WithKeyDir overrides the directory the master key file is stored in.
// Defaults to <os.UserConfigDir()>/freegin-ai. Mainly useful for tests.
func WithKeyDir(dir string) Option {
	return func(c *storeConfig) { c.keyDirPath = dir }
}

// New constructs a Store over db, loading (or generating) the master key
// from disk. db must already have the schema from internal/storage
// applied.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	cfg := storeConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	keyDir := cfg.keyDirPath
	if keyDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, gatewayerr.NewConfigError("determine config directory: %v", err)
		}
		keyDir = filepath.Join(configDir, "freegin-ai")
	}

	key, err := loadOrCreateKey(filepath.Join(keyDir, keyFileName))
	if err != nil {
		return nil, err
	}

	cipher, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, gatewayerr.NewConfigError("initialize cipher: %v", err)
	}

	return &Store{db: db, cipher: cipher, now: cfg.now}, nil
}

// loadOrCreateKey reads a 32-byte key from path, or generates and persists
// a fresh one (0600 permissions) if the file is absent or the wrong size.
func loadOrCreateKey(path string) ([]byte, error) {
	if bytes, err := os.ReadFile(path); err == nil && len(bytes) == keySize {
		return bytes, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, gatewayerr.NewConfigError("create config dir: %v", err)
		}
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, gatewayerr.NewConfigError("generate master key: %v", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, gatewayerr.NewConfigError("write key file: %v", err)
	}
	return key, nil
}

func (s *Store) nowStr() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Set encrypts token with a freshly generated nonce and upserts the
// resulting (nonce, ciphertext) pair for p. Idempotent per provider:
// calling it again rotates the credential.
func (s *Store) Set(ctx context.Context, p provider.Provider, token string) error {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return gatewayerr.NewApiError("generate nonce: %v", err)
	}

	ciphertext := s.cipher.Seal(nil, nonce, []byte(token), nil)
	now := s.nowStr()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_credentials (provider, nonce, ciphertext, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			nonce = excluded.nonce,
			ciphertext = excluded.ciphertext,
			updated_at = excluded.updated_at
	`, p.String(), nonce, ciphertext, now, now)
	if err != nil {
		return gatewayerr.NewDatabaseError("set credential", err)
	}
	return nil
}

// Get decrypts and returns the stored token for p. ok is false when no
// credential is stored. A corrupted or tampered ciphertext (AEAD tag
// mismatch) returns *gatewayerr.ApiError without leaking cryptographic
// detail.
func (s *Store) Get(ctx context.Context, p provider.Provider) (token string, ok bool, err error) {
	var nonce, ciphertext []byte
	row := s.db.QueryRowContext(ctx, `SELECT nonce, ciphertext FROM provider_credentials WHERE provider = ?`, p.String())
	switch scanErr := row.Scan(&nonce, &ciphertext); scanErr {
	case sql.ErrNoRows:
		return "", false, nil
	case nil:
		// fall through
	default:
		return "", false, gatewayerr.NewDatabaseError("get credential", scanErr)
	}

	plaintext, decErr := s.cipher.Open(nil, nonce, ciphertext, nil)
	if decErr != nil {
		return "", false, gatewayerr.NewApiError("failed to decrypt credential for %s", p.String())
	}
	return string(plaintext), true, nil
}

// Remove deletes the stored credential for p. Returns whether a row
// existed.
func (s *Store) Remove(ctx context.Context, p provider.Provider) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM provider_credentials WHERE provider = ?`, p.String())
	if err != nil {
		return false, gatewayerr.NewDatabaseError("remove credential", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, gatewayerr.NewDatabaseError("remove credential rows affected", err)
	}
	return n > 0, nil
}

// Has reports whether a credential is stored for p.
func (s *Store) Has(ctx context.Context, p provider.Provider) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM provider_credentials WHERE provider = ? LIMIT 1`, p.String()).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, gatewayerr.NewDatabaseError("check credential existence", err)
	}
	return true, nil
}

// StoredProviders lists providers with a currently stored credential.
func (s *Store) StoredProviders(ctx context.Context) ([]provider.Provider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT provider FROM provider_credentials`)
	if err != nil {
		return nil, gatewayerr.NewDatabaseError("list stored providers", err)
	}
	defer rows.Close()

	var out []provider.Provider
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, gatewayerr.NewDatabaseError("scan stored provider", err)
		}
		if p, ok := provider.FromAlias(name); ok {
			out = append(out, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, gatewayerr.NewDatabaseError("iterate stored providers", err)
	}
	return out, nil
}
