package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"post-manager/domain/repository"
)

// EnsureSessionStateSchemaMSSQL creates dbo.session_state when missing.
func EnsureSessionStateSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.session_state') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[session_state] (
        state_key NVARCHAR(191) NOT NULL PRIMARY KEY,
        state_value NVARCHAR(MAX) NOT NULL,
        updated_at DATETIME2 NOT NULL
    )
END`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure dbo.session_state: %w", err)
	}
	return nil
}

// SessionStateRepositoryMSSQL stores session keys in SQL Server.
type SessionStateRepositoryMSSQL struct{ db *sql.DB }

func NewSessionStateRepositoryMSSQL(db *sql.DB) *SessionStateRepositoryMSSQL {
	return &SessionStateRepositoryMSSQL{db: db}
}

func (r *SessionStateRepositoryMSSQL) Get(ctx context.Context, key string) (string, error) {
	if r.db == nil {
		return "", repository.ErrKeyNotFound
	}
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT state_value FROM dbo.session_state WHERE state_key=@p1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session_state %s: %w", key, err)
	}
	return value, nil
}

func (r *SessionStateRepositoryMSSQL) Set(ctx context.Context, key, value string) error {
	if r.db == nil {
		return errors.New("session state database not configured")
	}
	q := `MERGE dbo.session_state AS target
USING (SELECT @p1 AS state_key, @p2 AS state_value, @p3 AS updated_at) AS src
ON target.state_key = src.state_key
WHEN MATCHED THEN UPDATE SET state_value = src.state_value, updated_at = src.updated_at
WHEN NOT MATCHED THEN INSERT (state_key, state_value, updated_at) VALUES (src.state_key, src.state_value, src.updated_at);`
	if _, err := r.db.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("merge session_state %s: %w", key, err)
	}
	return nil
}

func (r *SessionStateRepositoryMSSQL) Delete(ctx context.Context, keys ...string) error {
	if r.db == nil || len(keys) == 0 {
		return nil
	}
	placeholders := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = k
	}
	q := fmt.Sprintf(`DELETE FROM dbo.session_state WHERE state_key IN (%s)`, strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete session_state: %w", err)
	}
	return nil
}
