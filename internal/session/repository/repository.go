package repository

import (
	"context"
	"time"
)

// Repository is the revocation ledger.
type Repository interface {
	// IsRevoked reports whether token was revoked. Errors are returned, never treated as "not revoked".
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Revoke records token. Revoking an already revoked token is not an error.
	Revoke(ctx context.Context, token string, expiresAt *time.Time) error
}
