package repository

import (
	"context"

	"todo-api/internal/todolist/domain"
)

// Repository defines persistence for todo lists. GetByID returns (nil, nil) when no row matches.
type Repository interface {
	ListByCreator(ctx context.Context, creatorID int64) ([]*domain.TodoList, error)
	GetByID(ctx context.Context, id int64) (*domain.TodoList, error)
	// Create inserts l and sets ID, CreatedAt and, when empty, Color.
	Create(ctx context.Context, l *domain.TodoList) error
	Update(ctx context.Context, l *domain.TodoList) error
	// Delete unassigns the list's todos and removes the list in one transaction.
	// Returns false if no list matched.
	Delete(ctx context.Context, id int64) (bool, error)
}
