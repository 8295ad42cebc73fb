// Package middleware holds the net/http middleware chain: request context, authentication,
// request logging, telemetry and audit.
package middleware

import (
	"context"
	"net/http"
)

type contextKey struct{ name string }

var (
	accountIDKey   = contextKey{"account_id"}
	tokenKey       = contextKey{"token"}
	clientIPKey    = contextKey{"client_ip"}
	requestInfoKey = contextKey{"request_info"}
)

// RequestInfo is filled in by inner middleware (Authenticate) and read by outer middleware
// (Logging, Telemetry) after the handler returns.
type RequestInfo struct {
	AccountID int64
}

// WithIdentity returns a context carrying the authenticated account id and the token it presented.
// It also records the account on the request's RequestInfo, if any.
func WithIdentity(ctx context.Context, accountID int64, token string) context.Context {
	if info := GetRequestInfo(ctx); info != nil {
		info.AccountID = accountID
	}
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return context.WithValue(ctx, tokenKey, token)
}

// GetAccountID returns the authenticated account id and true if set.
func GetAccountID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(accountIDKey).(int64)
	return v, ok && v > 0
}

// GetToken returns the session token the request authenticated with.
func GetToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	return v, ok && v != ""
}

// GetClientIP returns the client IP stored by RequestContext, or "".
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// GetRequestInfo returns the request's RequestInfo, or nil outside RequestContext.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return v
}

// RequestContext stores the client IP and a fresh RequestInfo on the request context.
// It must run before Logging, Telemetry and Authenticate.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, ClientIP(r))
		ctx = context.WithValue(ctx, requestInfoKey, &RequestInfo{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
