package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todo-api/internal/db"
)

// PostgresRepository stores revoked tokens in token_blacklist.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a ledger that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// IsRevoked reports whether token is present in the ledger.
func (r *PostgresRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Revoke inserts token. A concurrent or repeated revoke hits the unique constraint and is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, token string, expiresAt *time.Time) error {
	const q = `INSERT INTO token_blacklist (token, expires_at) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, token, timeToNullTime(expiresAt)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
