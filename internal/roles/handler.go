package roles

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

const basePath = "/admin/users/roles"

// Handler manages role assignment endpoints.
type Handler struct {
	page    *page.Responder
	backend Backend
	guard   *guard.Guard
	ctrl    *staged.Controller[Row]
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend, g *guard.Guard, store staged.StateStore, busyTimeout time.Duration) *Handler {
	return &Handler{
		page:    p,
		backend: backend,
		guard:   g,
		ctrl:    staged.NewController(Schema, store, busyTimeout, p.Logger()),
	}
}

// MountRoutes registers role routes under /admin/users.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserView))
		r.Get("/roles", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserEdit))
		r.Post("/roles/{id}/{action}", h.action)
	})
}

func stateKey(r *http.Request) string {
	return staged.Key(shared.SessionID(r.Context()), "roles")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	src := source{backend: h.backend, creds: h.page.Credentials(r)}
	var (
		res staged.Result[Row]
		err error
	)
	if r.URL.Query().Get("refresh") == "1" {
		res, err = h.ctrl.Refresh(r.Context(), stateKey(r), search, src)
	} else {
		res, err = h.ctrl.Ensure(r.Context(), stateKey(r), search, src)
	}
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.WarnDiscarded(r, res.Discarded)

	now := h.ctrl.Now()
	rows := make([]RowView, 0, len(res.Table.Rows))
	for _, row := range res.Table.Rows {
		rows = append(rows, RowView{
			Row:          row.Local,
			OriginalRole: row.Original.Role,
			Pending:      res.Table.HasPendingChanges(Schema, row.ID),
			Confirming:   row.Confirming,
			Busy:         row.IsBusy(now, h.ctrl.BusyTimeout()),
		})
	}
	options := make([]RoleOption, 0, len(access.AllRoles()))
	for _, role := range access.AllRoles() {
		options = append(options, RoleOption{Value: string(role), Label: role.Label()})
	}
	h.page.Render(w, r, "pages/user_roles.html", "User Roles", Page{
		Rows:    rows,
		Search:  search,
		Roles:   options,
		CanEdit: h.page.Session(r).HasPermission(access.PermUserEdit),
		Pending: len(res.Table.Pending(Schema)),
	}, http.StatusOK)
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request) {
	back := basePath
	if search := strings.TrimSpace(r.PostFormValue("search")); search != "" {
		back += "?search=" + url.QueryEscape(search)
	}
	src := source{backend: h.backend, creds: h.page.Credentials(r)}
	page.StagedAction(h.page, w, r, h.ctrl, stateKey(r), chi.URLParam(r, "id"), chi.URLParam(r, "action"), src, back)
}
