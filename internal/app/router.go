package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/storeadmin/internal/auth"
	"github.com/odyssey-erp/storeadmin/internal/catalog"
	"github.com/odyssey-erp/storeadmin/internal/observability"
	"github.com/odyssey-erp/storeadmin/internal/rbac"
	"github.com/odyssey-erp/storeadmin/internal/roles"
	"github.com/odyssey-erp/storeadmin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	RolesHandler   *roles.Handler
	JobHandler     *jobs.Handler
	Session        rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with storeadmin defaults.
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

	if params.AuthHandler != nil {
		r.Route("/auth", func(r chi.Router) {
			if !InTestMode() {
				r.Use(LoginRateLimiter(params.Config))
			}
			params.AuthHandler.MountRoutes(r)
		})
	}

	mount := "/api"
	if params.Config != nil && params.Config.AuthzMountPrefix != "" {
		mount = params.Config.AuthzMountPrefix
	}
	r.Route(mount, func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/me", func(r chi.Router) {
				r.Use(params.Session.AuthenticateOnly().Handler)
				params.AuthHandler.MountProfileRoutes(r)
			})
		}
		r.Group(func(r chi.Router) {
			r.Use(params.Session.Handler)
			if params.CatalogHandler != nil {
				r.Route("/permission_group", params.CatalogHandler.MountGroupRoutes)
				r.Route("/permission", params.CatalogHandler.MountPermissionRoutes)
			}
			if params.RolesHandler != nil {
				r.Route("/role", params.RolesHandler.MountRoutes)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
