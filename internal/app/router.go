package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/auth"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/inventory"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/products"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/storages"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/observability"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/httpx"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/rbac"
	"github.com/LifeIsPranav/InventoryMS-BE/jobs"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Authenticator      func(http.Handler) http.Handler
	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.PermissionsHandler
	ProductsHandler    *products.Handler
	StoragesHandler    *storages.Handler
	InventoryHandler   *inventory.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
	HealthChecks       map[string]HealthCheck
}

// NewRouter constructs the chi.Router with InventoryMS defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	authenticated := params.Authenticator
	if authenticated == nil {
		authenticated = func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication is not configured")
			})
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			if params.AuthHandler != nil {
				params.AuthHandler.MountRoutes(r, authenticated)
			}
			if params.PermissionsHandler != nil {
				r.Group(func(r chi.Router) {
					r.Use(authenticated)
					params.PermissionsHandler.MountRoutes(r)
				})
			}
		})
		if params.ProductsHandler != nil {
			r.Route("/products", func(r chi.Router) {
				params.ProductsHandler.MountRoutes(r, authenticated)
			})
		}
		if params.StoragesHandler != nil {
			r.Route("/storages", func(r chi.Router) {
				params.StoragesHandler.MountRoutes(r, authenticated)
			})
		}
		if params.InventoryHandler != nil {
			r.Route("/inventory", func(r chi.Router) {
				params.InventoryHandler.MountRoutes(r, authenticated)
			})
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(authenticated)
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "NotFound", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		httpx.JSON(w, status, result)
	}
}
