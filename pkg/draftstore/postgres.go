package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema creates the table used by PostgresStore.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS signup_drafts (
	scope      TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (scope, key)
);
CREATE INDEX IF NOT EXISTS signup_drafts_expires_at_idx ON signup_drafts (expires_at);
`

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore creates a new PostgreSQL draft store
func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{
		pool: pool,
		ttl:  ttl,
	}
}

// EnsureSchema creates the drafts table if it does not exist
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to create signup_drafts table: %w", err)
	}
	return nil
}

// Save upserts the draft and pushes its expiry forward
func (r *PostgresStore) Save(ctx context.Context, scope, key string, value []byte) error {
	query := `
		INSERT INTO signup_drafts (scope, key, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, key) DO UPDATE
		SET value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	expiresAt := time.Now().UTC().Add(r.ttl)
	if _, err := r.pool.Exec(ctx, query, scope, key, string(value), expiresAt); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Load returns the draft if it exists and has not expired
func (r *PostgresStore) Load(ctx context.Context, scope, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM signup_drafts
		WHERE scope = $1 AND key = $2 AND expires_at > NOW()
	`
	var value string
	err := r.pool.QueryRow(ctx, query, scope, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return []byte(value), nil
}

// Clear deletes the draft
func (r *PostgresStore) Clear(ctx context.Context, scope, key string) error {
	query := `DELETE FROM signup_drafts WHERE scope = $1 AND key = $2`
	if _, err := r.pool.Exec(ctx, query, scope, key); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// DeleteExpired removes abandoned drafts (for maintenance)
func (r *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM signup_drafts WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}
