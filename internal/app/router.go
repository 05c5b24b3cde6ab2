package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/invoices"
	"github.com/campus-finance/finance/internal/observability"
	"github.com/campus-finance/finance/internal/platform/httpx"
	"github.com/campus-finance/finance/internal/portal"
	"github.com/campus-finance/finance/internal/shared"
	"github.com/campus-finance/finance/internal/users"
	"github.com/campus-finance/finance/web"
)

// HealthCheck reports whether backing stores are reachable.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AccountsHandler *accounts.Handler
	InvoicesHandler *invoices.Handler
	UsersHandler    *users.Handler
	PortalHandler   *portal.Handler
	Metrics         *observability.Metrics
	Health          HealthCheck
}

// NewRouter constructs the chi.Router with finance defaults.
func NewRouter(params RouterParams) http.Handler {
	mwCfg := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}

	r := chi.NewRouter()
	r.Use(BaseStack(mwCfg)...)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Health != nil {
			if err := params.Health(r.Context()); err != nil {
				params.Logger.Warn("health check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(api chi.Router) {
		api.Use(APIStack(mwCfg)...)
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(api)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(api)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(api)
		}
	})

	if params.PortalHandler != nil {
		r.Group(func(pages chi.Router) {
			pages.Use(PortalStack(mwCfg)...)
			params.PortalHandler.MountRoutes(pages)
		})
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers keep stylesheets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
