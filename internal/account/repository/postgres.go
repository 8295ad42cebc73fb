package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"todo-api/internal/account/domain"
	"todo-api/internal/db"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, email, password_hash, created_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM account WHERE id = $1`, id)
}

// GetByUsername returns the account with the given (lowercase) username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM account WHERE username = $1`, username)
}

// GetByEmail returns the account with the given (lowercase) email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM account WHERE email = $1`, email)
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE username = $1)`, username)
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE email = $1)`, email)
}

// Create inserts the account and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	const q = `INSERT INTO account (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, a.Username, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Update writes username, email and password hash for a.ID.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	const q = `UPDATE account SET username = $1, email = $2, password_hash = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, q, a.Username, a.Email, a.PasswordHash, a.ID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Delete removes the account row. ON DELETE CASCADE removes its lists and todos.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM account WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, q string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) exists(ctx context.Context, q string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// mapWriteError turns unique violations on account_username_key / account_email_key into
// domain errors so concurrent duplicate registrations surface as conflicts.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "account_username_key":
			return domain.ErrUsernameTaken
		case "account_email_key":
			return domain.ErrEmailTaken
		}
	}
	return fmt.Errorf("db error: %w", err)
}
