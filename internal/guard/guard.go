// Package guard decides whether a request may reach a protected page.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
)

// State is the outcome of evaluating a rule.
type State int

const (
	Loading State = iota
	Unauthenticated
	Unauthorized
	Authorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Rule is what a route declares. Empty fields impose nothing. Holding any
// one of Permissions satisfies the permission check.
type Rule struct {
	Roles       []access.Role
	Permissions []access.Permission
}

// Decision carries the state and, when redirecting, where to.
type Decision struct {
	State    State
	Location string
}

// Evaluate applies the checks in order: loading, authentication, role, permission.
func Evaluate(sess *auth.Session, rule Rule) Decision {
	if sess == nil || sess.Loading {
		return Decision{State: Loading}
	}
	if !sess.Authenticated() {
		return Decision{State: Unauthenticated, Location: access.LoginPath}
	}
	if len(rule.Roles) > 0 && !sess.HasAnyRole(rule.Roles...) {
		return Decision{State: Unauthorized, Location: sess.Landing()}
	}
	if len(rule.Permissions) > 0 && !access.HasAny(sess, rule.Permissions...) {
		return Decision{State: Unauthorized, Location: sess.Landing()}
	}
	return Decision{State: Authorized}
}

// Guard turns rules into chi middleware.
type Guard struct {
	logger    *slog.Logger
	templates *view.Engine
}

// New constructs a Guard. templates renders the loading page.
func New(logger *slog.Logger, templates *view.Engine) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{logger: logger, templates: templates}
}

// RequireAuth admits any authenticated identity.
func (g *Guard) RequireAuth() func(http.Handler) http.Handler {
	return g.Require(Rule{})
}

// RequireRoles admits members of roles. Mount it on a route prefix.
func (g *Guard) RequireRoles(roles ...access.Role) func(http.Handler) http.Handler {
	return g.Require(Rule{Roles: roles})
}

// RequirePermission admits holders of any of perms. Nested under RequireRoles both checks run.
func (g *Guard) RequirePermission(perms ...access.Permission) func(http.Handler) http.Handler {
	return g.Require(Rule{Permissions: perms})
}

// Require builds middleware for an arbitrary rule.
func (g *Guard) Require(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Evaluate(auth.FromContext(r.Context()), rule)
			switch decision.State {
			case Authorized:
				next.ServeHTTP(w, r)
			case Loading:
				g.renderLoading(w, r)
			default:
				if decision.State == Unauthorized {
					g.logger.Debug("guard redirect", slog.String("path", r.URL.Path), slog.String("to", decision.Location))
				}
				http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			}
		})
	}
}

func (g *Guard) renderLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	if g.templates == nil {
		http.Error(w, "Loading", http.StatusServiceUnavailable)
		return
	}
	data := view.TemplateData{Title: "Loading", CurrentPath: r.URL.Path}
	if err := g.templates.RenderStatus(w, http.StatusServiceUnavailable, "pages/loading.html", data); err != nil {
		g.logger.Error("render loading", slog.Any("error", err))
	}
}
