package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"todo-api/internal/telemetry"
	"todo-api/internal/telemetry/domain"
)

const (
	EventTypeHTTPRequest = "http_request"
	eventSource          = "http_middleware"
)

// httpRequestMetadata is the JSON stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry emits an http_request event after each request. Best-effort and asynchronous;
// a nil emitter disables it. skipRoutes holds chi route patterns to ignore (e.g. /healthz).
func Telemetry(emitter telemetry.EventEmitter, skipRoutes map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if emitter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if skipRoutes[route] {
				return
			}
			meta, _ := json.Marshal(httpRequestMetadata{
				Method:     r.Method,
				Route:      route,
				StatusCode: statusOf(ww),
				DurationMs: time.Since(start).Milliseconds(),
				ClientIP:   GetClientIP(r.Context()),
			})
			event := &domain.Event{
				EventType: EventTypeHTTPRequest,
				Source:    eventSource,
				Metadata:  meta,
				CreatedAt: time.Now().UTC(),
			}
			if info := GetRequestInfo(r.Context()); info != nil {
				event.AccountID = info.AccountID
			}
			telemetry.EmitAsync(emitter, r.Context(), event)
		})
	}
}
