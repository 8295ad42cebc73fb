package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"todo-api/internal/audit"
)

// Audit records an audit entry after each mutating request on an authenticated route.
// skip holds "METHOD /pattern" keys already audited by the service layer (e.g. "POST /auth/logout").
// Must be mounted inside Authenticate. Best-effort: the logger never fails the request.
func Audit(logger audit.AuditLogger, skip map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := routePattern(r)
			if skip[r.Method+" "+pattern] {
				return
			}
			accountID, _ := GetAccountID(r.Context())
			ar := audit.ParseRoute(r.Method, pattern)
			logger.LogEvent(r.Context(), accountID, ar.Action, ar.Resource,
				fmt.Sprintf("path=%s status=%d", r.URL.Path, statusOf(ww)))
		})
	}
}
