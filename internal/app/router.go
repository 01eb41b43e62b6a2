package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/campus-console/internal/audit"
	"github.com/campushq/campus-console/internal/catalog"
	"github.com/campushq/campus-console/internal/grants"
	"github.com/campushq/campus-console/internal/observability"
	"github.com/campushq/campus-console/internal/plans"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/users"
	"github.com/campushq/campus-console/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Metrics         *observability.Metrics
	UsersHandler    *users.Handler
	ProfilesHandler *profiles.Handler
	PlansHandler    *plans.Handler
	CatalogHandler  *catalog.Handler
	GrantsHandler   *grants.Handler
	AuditHandler    *audit.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter builds the console HTTP router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.ProfilesHandler != nil {
			params.ProfilesHandler.MountRoutes(r)
		}
		if params.PlansHandler != nil {
			params.PlansHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.GrantsHandler != nil {
			params.GrantsHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
