package repository

import (
	"context"

	"todo-api/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByAccount(ctx context.Context, accountID int64, limit, offset int32) ([]*domain.AuditLog, error)
}
