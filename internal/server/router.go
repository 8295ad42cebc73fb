// Package server builds the HTTP route tree and its middleware chain.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"todo-api/internal/audit"
	healthhandler "todo-api/internal/health/handler"
	identityhandler "todo-api/internal/identity/handler"
	identityservice "todo-api/internal/identity/service"
	"todo-api/internal/platform/ownership"
	"todo-api/internal/server/middleware"
	"todo-api/internal/telemetry"
	todohandler "todo-api/internal/todo/handler"
	todorepo "todo-api/internal/todo/repository"
	listhandler "todo-api/internal/todolist/handler"
	listrepo "todo-api/internal/todolist/repository"
)

// Policy is the ownership policy, health-checked on /healthz.
type Policy interface {
	ownership.Policy
	HealthCheck(ctx context.Context) error
}

// Deps holds the services behind the HTTP routes.
type Deps struct {
	// Authenticator gates every route except /, /healthz, /auth/login and /auth/register.
	Authenticator middleware.Authenticator
	Auth          *identityservice.AuthService
	Lists         listrepo.Repository
	Items         todorepo.Repository
	Policy        Policy
	// Pinger is used by /healthz (e.g. *sql.DB). If nil, the database check is skipped.
	Pinger healthhandler.Pinger
	// AuditLogger records mutating requests on protected routes. If nil, nothing is audited.
	AuditLogger audit.AuditLogger
	// Emitter receives one http_request event per request. If nil, no events are emitted.
	Emitter telemetry.EventEmitter
	Log     *slog.Logger
}

// auditedByService lists protected routes the identity service already audits with a specific action.
var auditedByService = map[string]bool{
	"POST /auth/logout": true,
	"PUT /account":      true,
	"DELETE /account":   true,
}

var untracedRoutes = map[string]bool{
	"/":        true,
	"/healthz": true,
}

// NewRouter returns the root handler: chi routes wrapped in otelhttp.
//
// Route → handler mapping:
//   - /, /healthz              → internal/health/handler
//   - /auth/*, /account        → internal/identity/handler
//   - /todo/lists, /todo/list  → internal/todolist/handler
//   - /todo/items, /todo/item  → internal/todo/handler
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	health := healthhandler.NewHandler(deps.Pinger, deps.Policy, log)
	identity := identityhandler.NewHandler(deps.Auth, log)
	lists := listhandler.NewHandler(deps.Lists, deps.Policy, log)
	items := todohandler.NewHandler(deps.Items, deps.Lists, deps.Policy, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Telemetry(deps.Emitter, untracedRoutes))
	r.Use(chimw.Recoverer)

	r.Get("/", health.Root)
	r.Get("/healthz", health.Readiness)
	r.Post("/auth/login", identity.Login)
	r.Post("/auth/register", identity.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Authenticator))
		r.Use(middleware.Audit(deps.AuditLogger, auditedByService))

		r.Post("/auth/refresh", identity.Refresh)
		r.Post("/auth/token/verify", identity.VerifyToken)
		r.Post("/auth/logout", identity.Logout)

		r.Get("/account", identity.GetAccount)
		r.Put("/account", identity.UpdateAccount)
		r.Delete("/account", identity.DeleteAccount)

		r.Get("/todo/lists", lists.List)
		r.Post("/todo/list", lists.Create)
		r.Put("/todo/list/{id}", lists.Update)
		r.Delete("/todo/list/{id}", lists.Delete)
		r.Get("/todo/list/{id}/items", items.ListByList)

		r.Get("/todo/items", items.List)
		r.Get("/todo/item/{id}", items.Get)
		r.Post("/todo/item", items.Create)
		r.Put("/todo/item/complete/{id}", items.ToggleCompleted)
		r.Put("/todo/item/{id}", items.Update)
		r.Delete("/todo/item/{id}", items.Delete)
	})

	return otelhttp.NewHandler(r, "todo-api")
}
