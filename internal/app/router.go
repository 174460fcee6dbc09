package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/attendance"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/bookings"
	"github.com/galaxy-staffing/galaxy-web/internal/dashboard"
	"github.com/galaxy-staffing/galaxy-web/internal/events"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/observability"
	"github.com/galaxy-staffing/galaxy-web/internal/rbac"
	"github.com/galaxy-staffing/galaxy-web/internal/roles"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/shell"
	"github.com/galaxy-staffing/galaxy-web/internal/users"
	"github.com/galaxy-staffing/galaxy-web/internal/wages"
	"github.com/galaxy-staffing/galaxy-web/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthStore      *auth.Store
	Guard          *guard.Guard
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	ShellHandler       *shell.Handler
	DashboardHandler   *dashboard.Handler
	EventsHandler      *events.Handler
	AttendanceHandler  *attendance.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	WagesHandler       *wages.Handler
	PermissionsHandler *rbac.PermissionsHandler
	BookingsHandler    *bookings.Handler
}

// NewRouter constructs the chi.Router with galaxy-web defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		AuthStore:      params.AuthStore,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	params.AuthHandler.MountRoutes(r)

	g := params.Guard
	r.Group(func(r chi.Router) {
		r.Use(g.RequireAuth())
		params.ShellHandler.MountRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(g.RequireRoles(access.ShellRoles(access.ShellAdmin)...))
		params.DashboardHandler.MountAdminRoutes(r)
		params.EventsHandler.MountAdminRoutes(r)
		params.AttendanceHandler.MountAdminRoutes(r)
		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r)
			params.RolesHandler.MountRoutes(r)
		})
		params.WagesHandler.MountAdminRoutes(r)
		r.Route("/rbac", params.PermissionsHandler.MountRoutes)
	})

	r.Route("/captain", func(r chi.Router) {
		r.Use(g.RequireRoles(access.ShellRoles(access.ShellCaptain)...))
		params.DashboardHandler.MountCaptainRoutes(r)
		params.EventsHandler.MountCaptainRoutes(r)
		params.AttendanceHandler.MountCaptainRoutes(r)
	})

	r.Route("/worker", func(r chi.Router) {
		r.Use(g.RequireRoles(access.ShellRoles(access.ShellWorker)...))
		params.DashboardHandler.MountWorkerRoutes(r)
		params.BookingsHandler.MountRoutes(r)
		params.WagesHandler.MountWorkerRoutes(r)
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler caches static assets in the browser for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
