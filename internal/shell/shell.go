// Package shell builds the role-scoped navigation chrome.
package shell

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
)

// NavItem is one declared navigation entry. Holding any of Permissions makes
// it visible; none declared means always visible within the shell.
type NavItem struct {
	Path        string
	Icon        string
	Label       string
	Permissions []access.Permission
}

// navigation is the one table of shell entries, in display order.
var navigation = map[access.Shell][]NavItem{
	access.ShellAdmin: {
		{Path: "/admin/dashboard", Icon: "dashboard", Label: "Dashboard", Permissions: []access.Permission{access.PermDashboardView}},
		{Path: "/admin/events", Icon: "calendar", Label: "Events", Permissions: []access.Permission{access.PermEventView, access.PermAttendanceView}},
		{Path: "/admin/users", Icon: "users", Label: "Users", Permissions: []access.Permission{access.PermUserView}},
		{Path: "/admin/users/roles", Icon: "badge", Label: "User Roles", Permissions: []access.Permission{access.PermUserView}},
		{Path: "/admin/wages", Icon: "wallet", Label: "Wages", Permissions: []access.Permission{access.PermWageView}},
		{Path: "/admin/rbac", Icon: "shield", Label: "Team Access", Permissions: []access.Permission{access.PermRBACView}},
		{Path: access.AdminProfilePath, Icon: "user", Label: "Profile"},
	},
	access.ShellCaptain: {
		{Path: "/captain/dashboard", Icon: "dashboard", Label: "Dashboard"},
		{Path: "/captain/events", Icon: "calendar", Label: "My Events"},
		{Path: "/captain/profile", Icon: "user", Label: "Profile"},
	},
	access.ShellWorker: {
		{Path: "/worker/dashboard", Icon: "dashboard", Label: "Dashboard"},
		{Path: "/worker/events", Icon: "calendar", Label: "Open Events"},
		{Path: "/worker/bookings", Icon: "ticket", Label: "My Bookings"},
		{Path: "/worker/wages", Icon: "wallet", Label: "Earnings"},
		{Path: "/worker/profile", Icon: "user", Label: "Profile"},
	},
}

// Items returns the declared entries of a shell.
func Items(kind access.Shell) []NavItem {
	return navigation[kind]
}

// Visible filters the session's shell entries by its permissions.
func Visible(sess *auth.Session) []NavItem {
	if !sess.Authenticated() {
		return nil
	}
	var out []NavItem
	for _, item := range navigation[sess.User.Role.Shell()] {
		if len(item.Permissions) == 0 || access.HasAny(sess, item.Permissions...) {
			out = append(out, item)
		}
	}
	return out
}

// CollapseKey is the session key of a shell's sidebar flag.
func CollapseKey(kind access.Shell) string {
	return "sidebar_collapsed:" + string(kind)
}

// Build returns the chrome for the request, or nil when nobody is signed in.
func Build(r *http.Request) *view.Shell {
	current := auth.FromContext(r.Context())
	if !current.Authenticated() {
		return nil
	}
	kind := current.User.Role.Shell()
	items := Visible(current)
	active := activeIndex(items, r.URL.Path)
	links := make([]view.NavLink, 0, len(items))
	for i, item := range items {
		links = append(links, view.NavLink{Path: item.Path, Icon: item.Icon, Label: item.Label, Active: i == active})
	}
	collapsed := false
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		collapsed = sess.Get(CollapseKey(kind)) == "1"
	}
	return &view.Shell{
		Kind:      string(kind),
		UserName:  current.User.Name,
		RoleLabel: current.User.Role.Label(),
		Items:     links,
		Collapsed: collapsed,
	}
}

// activeIndex picks the longest entry path that prefixes the request path.
func activeIndex(items []NavItem, path string) int {
	best, bestLen := -1, 0
	for i, item := range items {
		if path == item.Path || strings.HasPrefix(path, item.Path+"/") {
			if len(item.Path) > bestLen {
				best, bestLen = i, len(item.Path)
			}
		}
	}
	return best
}

// Handler serves the sidebar toggle.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers shell routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/shell/sidebar", h.toggleSidebar)
}

func (h *Handler) toggleSidebar(w http.ResponseWriter, r *http.Request) {
	current := auth.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	back := SafeReturn(r.PostFormValue("return"), current.Landing())
	if !current.Authenticated() || sess == nil {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	}
	key := CollapseKey(current.User.Role.Shell())
	if sess.Get(key) == "1" {
		sess.Delete(key)
	} else {
		sess.Set(key, "1")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// SafeReturn accepts only same-origin absolute paths.
func SafeReturn(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}
