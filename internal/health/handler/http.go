package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"todo-api/internal/server/httpx"
)

const checkTimeout = 2 * time.Second

// Pinger checks database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the ownership policy evaluates.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves liveness and readiness endpoints.
type Handler struct {
	pinger  Pinger
	checker PolicyChecker
	log     *slog.Logger
}

// NewHandler returns a Handler. A nil pinger or checker skips that check.
func NewHandler(pinger Pinger, checker PolicyChecker, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{pinger: pinger, checker: checker, log: log}
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.Message(w, http.StatusOK, "Server is up and running")
}

// Readiness handles GET /healthz. Any failing check yields 503 naming the check.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	if h.pinger != nil {
		if err := h.pinger.PingContext(ctx); err != nil {
			h.notServing(w, r, "database", err)
			return
		}
	}
	if h.checker != nil {
		if err := h.checker.HealthCheck(ctx); err != nil {
			h.notServing(w, r, "policy", err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) notServing(w http.ResponseWriter, r *http.Request, check string, err error) {
	h.log.WarnContext(r.Context(), "readiness check failed", slog.String("check", check), slog.Any("error", err))
	httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "check": check})
}
