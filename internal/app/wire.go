package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/galaxy-staffing/galaxy-web/internal/attendance"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/bookings"
	"github.com/galaxy-staffing/galaxy-web/internal/dashboard"
	"github.com/galaxy-staffing/galaxy-web/internal/events"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/observability"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/rbac"
	"github.com/galaxy-staffing/galaxy-web/internal/roles"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/shell"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
	"github.com/galaxy-staffing/galaxy-web/internal/users"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
	"github.com/galaxy-staffing/galaxy-web/internal/wages"
)

// SessionCookie names the browser session cookie.
const SessionCookie = "galaxy_session"

// Handler builds every component on top of a Redis client and returns the
// root handler. metrics may be nil.
func Handler(cfg *Config, logger *slog.Logger, redisClient *redis.Client, metrics *observability.Metrics) (http.Handler, error) {
	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("app: parse templates: %w", err)
	}

	var opts []galaxy.Option
	if metrics != nil {
		opts = append(opts, galaxy.WithObserver(metrics))
	}
	backend := galaxy.NewClient(cfg.GalaxyAPIURL, cfg.GalaxyAPITimeout, opts...)

	sessionManager := shared.NewSessionManager(redisClient, SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	states := staged.NewRedisStore(redisClient, cfg.SessionTTL)

	store := auth.NewStore(auth.StoreConfig{
		Sessions: sessionManager,
		CSRF:     csrfManager,
		Backend:  backend,
		Purger:   states,
		Logger:   logger,
		Strict:   cfg.StrictPermissions(),
	})
	responder := page.NewResponder(logger, templates, csrfManager, store)
	g := guard.New(logger, templates)

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthStore:      store,
		Guard:          g,
		Metrics:        metrics,

		AuthHandler:        auth.NewHandler(logger, auth.NewService(backend), store, templates, csrfManager),
		ShellHandler:       shell.NewHandler(),
		DashboardHandler:   dashboard.NewHandler(responder, backend, g),
		EventsHandler:      events.NewHandler(responder, backend, g),
		AttendanceHandler:  attendance.NewHandler(responder, backend, g, states, cfg.StagedBusyTimeout),
		UsersHandler:       users.NewHandler(responder, users.NewService(backend), g),
		RolesHandler:       roles.NewHandler(responder, backend, g, states, cfg.StagedBusyTimeout),
		WagesHandler:       wages.NewHandler(responder, backend, g),
		PermissionsHandler: rbac.NewPermissionsHandler(responder, rbac.NewService(backend), backend, g, states, cfg.StagedBusyTimeout),
		BookingsHandler:    bookings.NewHandler(responder, backend),
	}), nil
}
