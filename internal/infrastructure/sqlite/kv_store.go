// Package sqlite implementa el KVStore sobre SQLite (sqlx + driver puro Go modernc).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // driver SQLite puro Go

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store(
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  expires_at INTEGER NOT NULL DEFAULT 0, -- epoch ms; 0 = sin expiración
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_kv_store_expires ON kv_store(expires_at);
`

// OpenDB abre la base (archivo o ":memory:") y asegura el esquema.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// ":memory:" es una base distinta por conexión
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return db, nil
}

// KVStore tabla clave/valor con expiración.
type KVStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewKVStore construye el adaptador sobre una base ya abierta con OpenDB.
func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

type row struct {
	Value     []byte `db:"value"`
	ExpiresAt int64  `db:"expires_at"`
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT value, expires_at FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	if r.ExpiresAt > 0 && r.ExpiresAt <= s.now().UnixMilli() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
		return nil, domain.ErrNotFound
	}
	return r.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO kv_store(key, value, expires_at, updated_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at
	`, key, value, expiresAt, now.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// PurgeExpired borra los registros vencidos y devuelve cuántos eliminó.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE expires_at > 0 AND expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sqlite purge: %w", err)
	}
	return res.RowsAffected()
}
