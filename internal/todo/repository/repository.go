package repository

import (
	"context"

	"todo-api/internal/todo/domain"
)

// Repository defines persistence for todo items. Lookups return (nil, nil) when no row matches.
type Repository interface {
	// ListByCreator returns the creator's items ordered by id, only completed ones when completedOnly.
	ListByCreator(ctx context.Context, creatorID int64, completedOnly bool) ([]*domain.Todo, error)
	ListByList(ctx context.Context, listID int64) ([]*domain.Todo, error)
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	Create(ctx context.Context, t *domain.Todo) error
	Update(ctx context.Context, t *domain.Todo) error
	ToggleCompleted(ctx context.Context, id int64) (*domain.Todo, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
