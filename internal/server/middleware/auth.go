package middleware

import (
	"context"
	"net/http"
	"strings"

	"todo-api/internal/server/httpx"
)

// Authenticator resolves a presented session token to an account id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// Authenticate rejects requests whose Authorization header does not carry a live session token.
// The header holds the raw token. Every rejection gets the same 401 body.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("Authorization"))
			accountID, err := a.Authenticate(r.Context(), token)
			if err != nil {
				httpx.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), accountID, token)))
		})
	}
}
