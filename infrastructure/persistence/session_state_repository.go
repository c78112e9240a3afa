package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"post-manager/domain/repository"
	"post-manager/infrastructure/logger"

	"github.com/lib/pq"
)

// EnsureSessionStateSchema creates the key/value table holding session state.
func EnsureSessionStateSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS session_state (
        state_key TEXT PRIMARY KEY,
        state_value TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create session_state table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_session_state_updated_at ON session_state(updated_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_session_state_updated_at")
	}
	return nil
}

// SessionStateRepository stores session keys in PostgreSQL.
type SessionStateRepository struct{ db *sql.DB }

func NewSessionStateRepository(db *sql.DB) *SessionStateRepository {
	return &SessionStateRepository{db: db}
}

func (r *SessionStateRepository) Get(ctx context.Context, key string) (string, error) {
	if r.db == nil {
		return "", repository.ErrKeyNotFound
	}
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT state_value FROM session_state WHERE state_key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session_state %s: %w", key, err)
	}
	return value, nil
}

func (r *SessionStateRepository) Set(ctx context.Context, key, value string) error {
	if r.db == nil {
		return errors.New("session state database not configured")
	}
	q := `INSERT INTO session_state (state_key, state_value, updated_at)
		  VALUES ($1,$2,$3)
		  ON CONFLICT (state_key) DO UPDATE SET
			state_value=EXCLUDED.state_value,
			updated_at=EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert session_state %s: %w", key, err)
	}
	return nil
}

func (r *SessionStateRepository) Delete(ctx context.Context, keys ...string) error {
	if r.db == nil || len(keys) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_state WHERE state_key = ANY($1)`, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete session_state: %w", err)
	}
	return nil
}
