package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-api/internal/db"
	"todo-api/internal/todo/domain"
)

const todoColumns = `id, title, creator_id, description, created_at, due_at, completed, list_id, priority`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a todo repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID int64, completedOnly bool) ([]*domain.Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todo WHERE creator_id = $1`
	if completedOnly {
		q += ` AND completed`
	}
	return r.list(ctx, q+` ORDER BY id`, creatorID)
}

func (r *PostgresRepository) ListByList(ctx context.Context, listID int64) ([]*domain.Todo, error) {
	return r.list(ctx, `SELECT `+todoColumns+` FROM todo WHERE list_id = $1 ORDER BY id`, listID)
}

// GetByID returns the item for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	return r.getOne(ctx, `SELECT `+todoColumns+` FROM todo WHERE id = $1`, id)
}

// Create inserts t and fills in ID and CreatedAt. Completed always starts false.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Todo) error {
	const q = `INSERT INTO todo (title, creator_id, description, due_at, list_id, priority)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, t.Title, t.CreatorID, t.Description, t.DueAt, t.ListID, t.Priority).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	t.Completed = false
	return nil
}

// Update writes every mutable column of t.ID.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Todo) error {
	const q = `UPDATE todo SET title = $1, description = $2, due_at = $3, completed = $4, list_id = $5, priority = $6
		WHERE id = $7`
	_, err := r.db.ExecContext(ctx, q, t.Title, t.Description, t.DueAt, t.Completed, t.ListID, t.Priority, t.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ToggleCompleted flips completed in a single statement and returns the updated row, or nil if not found.
func (r *PostgresRepository) ToggleCompleted(ctx context.Context, id int64) (*domain.Todo, error) {
	return r.getOne(ctx, `UPDATE todo SET completed = NOT completed WHERE id = $1 RETURNING `+todoColumns, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todo WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, q string, arg any) (*domain.Todo, error) {
	t, err := scanTodo(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) list(ctx context.Context, q string, arg any) ([]*domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	out := []*domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*domain.Todo, error) {
	var t domain.Todo
	err := s.Scan(&t.ID, &t.Title, &t.CreatorID, &t.Description, &t.CreatedAt,
		&t.DueAt, &t.Completed, &t.ListID, &t.Priority)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
