package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo-api/internal/audit/domain"
	"todo-api/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	const q = `INSERT INTO audit_log (id, account_id, action, resource, ip, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var accountID sql.NullInt64
	if a.AccountID != nil {
		accountID = sql.NullInt64{Int64: *a.AccountID, Valid: true}
	}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	if _, err := r.db.ExecContext(ctx, q, a.ID, accountID, a.Action, a.Resource, a.IP, meta, a.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByAccount returns the account's audit logs, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	const q = `SELECT id, account_id, action, resource, ip, metadata, created_at
FROM audit_log WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a    domain.AuditLog
			acc  sql.NullInt64
			meta sql.NullString
		)
		if err := rows.Scan(&a.ID, &acc, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if acc.Valid {
			id := acc.Int64
			a.AccountID = &id
		}
		a.Metadata = meta.String
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
