package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/dashboard-config/internal/handlers"
	"github.com/GregMSThompson/dashboard-config/internal/middleware"
)

// NewRouter mounts the API. auth guards every route except /metrics and
// /healthz.
func NewRouter(deps *handlers.Deps, auth func(http.Handler) http.Handler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", metrics)

	th := handlers.NewTemplateHandlers(deps)
	dh := handlers.NewDashboardHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Mount("/templates", th.TemplateRoutes())
		r.Mount("/dashboards", dh.DashboardRoutes())
	})
	return r
}
