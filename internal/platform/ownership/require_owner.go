// Package ownership guards per-account resources behind the access policy.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"todo-api/internal/server/httpx"
	"todo-api/internal/server/middleware"
)

var (
	// ErrUnauthenticated means the context carries no account.
	ErrUnauthenticated = errors.New("account context required")
	// ErrForbidden means the policy denied access to the resource.
	ErrForbidden = errors.New("not permitted to access this resource")
)

// Policy is the access decision used by RequireOwner.
type Policy interface {
	AllowAccess(ctx context.Context, subjectID, ownerID int64) (bool, error)
}

// RequireOwner ensures the authenticated caller may act on a resource created by ownerID.
// Returns the caller's account id on success, ErrUnauthenticated or ErrForbidden on denial,
// or a wrapped policy error.
func RequireOwner(ctx context.Context, policy Policy, ownerID int64) (int64, error) {
	accountID, ok := middleware.GetAccountID(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	allowed, err := policy.AllowAccess(ctx, accountID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("evaluate ownership: %w", err)
	}
	if !allowed {
		return 0, ErrForbidden
	}
	return accountID, nil
}

// WriteError answers a RequireOwner failure: 401, 403, or a logged 500 for policy errors.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		httpx.Unauthorized(w)
	case errors.Is(err, ErrForbidden):
		httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
	default:
		httpx.Internal(w, r, log, err)
	}
}
