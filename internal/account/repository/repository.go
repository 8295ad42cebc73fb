package repository

import (
	"context"

	"todo-api/internal/account/domain"
)

// Repository defines persistence for accounts. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// Create inserts a and sets its ID and CreatedAt. Returns domain.ErrUsernameTaken or
	// domain.ErrEmailTaken when a unique constraint rejects the row.
	Create(ctx context.Context, a *domain.Account) error
	// Update writes username, email and password hash. Same constraint errors as Create.
	Update(ctx context.Context, a *domain.Account) error
	// Delete removes the account; todos and lists go with it. Returns false if no row matched.
	Delete(ctx context.Context, id int64) (bool, error)
}
