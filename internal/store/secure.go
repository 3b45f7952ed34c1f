// Package store implements the secure credential store: a sqlite-backed
// key/value table whose values are encrypted at rest with a key derived
// from a platform-provided passphrase.
//
// The store exclusively owns the persisted credential records. All
// operations are safe to call with no prior state: "not found" reads
// return zero values, never errors.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Register the sqlite driver used by Open.
	_ "modernc.org/sqlite"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/cryptox"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/dbx"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
	authtoken "github.com/avikshith-np/questions-auth-module-app-sub000/internal/token"
)

// Persisted record keys.
const (
	keyToken         = "auth_token"
	keyTokenMetadata = "auth_token_metadata"
	keyProfile       = "auth_profile"
	keyInstallID     = "install_id"

	saltKey  = "store_salt"
	saltSize = 16
)

// tokenMetadata is the companion record to the token itself.
type tokenMetadata struct {
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SecureStore persists the bearer token and profile snapshot.
type SecureStore struct {
	db          *sql.DB
	key         []byte
	maxTokenAge time.Duration
	now         func() time.Time
}

type Option func(*SecureStore)

// WithClock replaces the time source (test seam).
func WithClock(now func() time.Time) Option {
	return func(s *SecureStore) { s.now = now }
}

// WithMaxTokenAge overrides the fallback expiry window applied to tokens
// without a decodable expiry claim.
func WithMaxTokenAge(d time.Duration) Option {
	return func(s *SecureStore) { s.maxTokenAge = d }
}

// Open opens (creating when necessary) the sqlite file at path and derives
// the encryption key from the passphrase and a per-database salt.
func Open(path string, passphrase []byte, opts ...Option) (*SecureStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s, err := NewWithDB(db, passphrase, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB builds a SecureStore over an existing database handle. Used by
// Open and directly by tests with an in-memory database.
func NewWithDB(db *sql.DB, passphrase []byte, opts ...Option) (*SecureStore, error) {
	s := &SecureStore{
		db:          db,
		maxTokenAge: authtoken.DefaultMaxAge,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}
	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return nil, err
	}
	s.key = cryptox.DeriveKey(passphrase, salt)
	return s, nil
}

func (s *SecureStore) Close() error {
	return s.db.Close()
}

func (s *SecureStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS secure_items (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// loadOrCreateSalt reads the key-derivation salt, creating it on first use.
// The salt is not secret and is stored in the clear.
func (s *SecureStore) loadOrCreateSalt() ([]byte, error) {
	var salt []byte
	err := s.db.QueryRow(`SELECT value FROM store_meta WHERE key = ?`, saltKey).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load store salt: %w", err)
	}

	salt, err = cryptox.RandBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("generate store salt: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO store_meta (key, value) VALUES (?, ?)`, saltKey, salt); err != nil {
		return nil, fmt.Errorf("save store salt: %w", err)
	}
	return salt, nil
}

// SaveToken persists the token and its metadata record in one transaction.
// The expiry claim is decoded up front; an undecodable token is still
// saved (the expiry policy treats it as expired on read).
func (s *SecureStore) SaveToken(ctx context.Context, tok string) error {
	meta := tokenMetadata{SavedAt: s.now()}
	if exp, err := authtoken.TryDecodeExpiry(tok); err == nil && exp.OK {
		at := exp.At
		meta.ExpiresAt = &at
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.writeToken(ctx, tx, tok, meta)
	})
}

func (s *SecureStore) writeToken(ctx context.Context, tx dbx.DBTX, tok string, meta tokenMetadata) error {
	if err := s.setSealed(ctx, tx, keyToken, []byte(tok)); err != nil {
		return err
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.setSealed(ctx, tx, keyTokenMetadata, raw)
}

// GetToken returns the stored token, or "" when none exists.
func (s *SecureStore) GetToken(ctx context.Context) (string, error) {
	raw, err := s.getSealed(ctx, s.db, keyToken)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Credential returns the full stored credential record, or nil when no
// token is stored.
func (s *SecureStore) Credential(ctx context.Context) (*models.StoredCredential, error) {
	tok, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, nil
	}

	cred := &models.StoredCredential{Token: tok}
	raw, err := s.getSealed(ctx, s.db, keyTokenMetadata)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		var meta tokenMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decode token metadata: %w", err)
		}
		cred.SavedAt = meta.SavedAt
		cred.ExpiresAt = meta.ExpiresAt
	}
	return cred, nil
}

func (s *SecureStore) ClearToken(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.deleteItem(ctx, tx, keyToken); err != nil {
			return err
		}
		return s.deleteItem(ctx, tx, keyTokenMetadata)
	})
}

// HasValidToken reports whether a non-empty token is stored. It says
// nothing about expiry; see IsTokenExpired.
func (s *SecureStore) HasValidToken(ctx context.Context) (bool, error) {
	tok, err := s.GetToken(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

// IsTokenExpired applies the fail-closed expiry policy: a stored expiry
// claim is compared against now; without one the token falls back to the
// maximum-age window; an undecodable token (or no token at all) is expired.
func (s *SecureStore) IsTokenExpired(ctx context.Context) (bool, error) {
	cred, err := s.Credential(ctx)
	if err != nil {
		return true, err
	}
	if cred == nil {
		return true, nil
	}

	now := s.now()
	if cred.ExpiresAt != nil {
		return !cred.ExpiresAt.After(now), nil
	}
	return authtoken.Expired(cred.Token, cred.SavedAt, now, s.maxTokenAge), nil
}

func (s *SecureStore) SaveProfile(ctx context.Context, snapshot *models.ProfileSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode profile snapshot: %w", err)
	}
	return s.setSealed(ctx, s.db, keyProfile, raw)
}

// GetProfile returns the last persisted snapshot, or nil when none exists.
func (s *SecureStore) GetProfile(ctx context.Context) (*models.ProfileSnapshot, error) {
	raw, err := s.getSealed(ctx, s.db, keyProfile)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var snapshot models.ProfileSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode profile snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *SecureStore) ClearProfile(ctx context.Context) error {
	return s.deleteItem(ctx, s.db, keyProfile)
}

// SaveSession persists the token, its metadata, and the profile snapshot
// in a single transaction, so a concurrent reader never observes a token
// without its profile or vice versa.
func (s *SecureStore) SaveSession(ctx context.Context, tok string, snapshot *models.ProfileSnapshot) error {
	meta := tokenMetadata{SavedAt: s.now()}
	if exp, err := authtoken.TryDecodeExpiry(tok); err == nil && exp.OK {
		at := exp.At
		meta.ExpiresAt = &at
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode profile snapshot: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.writeToken(ctx, tx, tok, meta); err != nil {
			return err
		}
		return s.setSealed(ctx, tx, keyProfile, raw)
	})
}

// ClearAll wipes the credential and profile records. The install id
// survives; it identifies the installation, not the session.
func (s *SecureStore) ClearAll(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range []string{keyToken, keyTokenMetadata, keyProfile} {
			if err := s.deleteItem(ctx, tx, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// InstallID returns the stable identifier of this installation, creating
// it on first call.
func (s *SecureStore) InstallID(ctx context.Context) (string, error) {
	raw, err := s.getSealed(ctx, s.db, keyInstallID)
	if err != nil {
		return "", err
	}
	if raw != nil {
		return string(raw), nil
	}

	id := uuid.NewString()
	if err := s.setSealed(ctx, s.db, keyInstallID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// --- sealed key/value primitives ---

func (s *SecureStore) getSealed(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var sealed []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM secure_items WHERE key = ?`, key).Scan(&sealed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item[%s]: %w", key, err)
	}

	plain, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal item[%s]: %w", key, err)
	}
	return plain, nil
}

func (s *SecureStore) setSealed(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("failed to seal item[%s]: %w", key, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO secure_items (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, sealed)
	if err != nil {
		return fmt.Errorf("failed to set item[%s]: %w", key, err)
	}
	return nil
}

func (s *SecureStore) deleteItem(ctx context.Context, db dbx.DBTX, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM secure_items WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete item[%s]: %w", key, err)
	}
	return nil
}
