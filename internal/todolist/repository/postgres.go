package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-api/internal/db"
	"todo-api/internal/todolist/domain"
)

const listColumns = `id, creator_id, name, color, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a todo list repository backed by conn. Delete needs a
// transaction, so it takes the pool rather than db.DBTX.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListByCreator returns the creator's lists ordered by id. Never nil.
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID int64) ([]*domain.TodoList, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+listColumns+` FROM todo_list WHERE creator_id = $1 ORDER BY id`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	out := []*domain.TodoList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// GetByID returns the list for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.TodoList, error) {
	l, err := scanList(r.db.QueryRowContext(ctx, `SELECT `+listColumns+` FROM todo_list WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *domain.TodoList) error {
	if l.Color == "" {
		l.Color = domain.DefaultColor
	}
	const q = `INSERT INTO todo_list (creator_id, name, color) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q, l.CreatorID, l.Name, l.Color).Scan(&l.ID, &l.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes name and color for l.ID.
func (r *PostgresRepository) Update(ctx context.Context, l *domain.TodoList) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE todo_list SET name = $1, color = $2 WHERE id = $3`, l.Name, l.Color, l.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE todo SET list_id = NULL WHERE list_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM todo_list WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(s rowScanner) (*domain.TodoList, error) {
	var l domain.TodoList
	if err := s.Scan(&l.ID, &l.CreatorID, &l.Name, &l.Color, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
