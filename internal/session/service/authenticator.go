// Package service is the single gate for protected operations: it combines the token codec
// with the revocation ledger.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"todo-api/internal/security"
)

var (
	// ErrMissingCredential means no token was presented.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidToken means the token failed signature, algorithm, or expiry checks.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrRevoked means the token is in the revocation ledger.
	ErrRevoked = errors.New("token revoked")
	// ErrUnverifiable means the ledger could not be consulted; access is denied.
	ErrUnverifiable = errors.New("token revocation status unavailable")
)

// TokenCodec is the subset of security.TokenCodec the authenticator needs.
type TokenCodec interface {
	Verify(token string) (int64, error)
	DecodeUnchecked(token string) (*security.SessionClaims, error)
}

// Ledger is the subset of the revocation repository the authenticator needs.
type Ledger interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, expiresAt *time.Time) error
}

// Authenticator decides whether a presented session token grants access.
type Authenticator struct {
	tokens TokenCodec
	ledger Ledger
	log    *slog.Logger
}

// NewAuthenticator returns an Authenticator. log may be nil.
func NewAuthenticator(tokens TokenCodec, ledger Ledger, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{tokens: tokens, ledger: ledger, log: log}
}

// Authenticate returns the account id asserted by token, or one of ErrMissingCredential,
// ErrInvalidToken, ErrRevoked, ErrUnverifiable. Callers must not surface which one.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (int64, error) {
	if strings.TrimSpace(token) == "" {
		return 0, ErrMissingCredential
	}
	accountID, err := a.tokens.Verify(token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	revoked, err := a.ledger.IsRevoked(ctx, token)
	if err != nil {
		a.log.ErrorContext(ctx, "revocation lookup failed",
			slog.String("token_fp", security.Fingerprint(token)), slog.Any("error", err))
		return 0, ErrUnverifiable
	}
	if revoked {
		return 0, ErrRevoked
	}
	return accountID, nil
}

// Revoke adds token to the ledger. The token's exp claim is copied to the record when it
// can be read. Only call with a token that Authenticate accepted in the same request.
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	var expiresAt *time.Time
	if claims, err := a.tokens.DecodeUnchecked(token); err == nil && claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		expiresAt = &t
	}
	return a.ledger.Revoke(ctx, token, expiresAt)
}
