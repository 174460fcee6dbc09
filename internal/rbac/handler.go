package rbac

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

const basePath = "/admin/rbac"

// PermissionsHandler manages the catalogue and team access endpoints.
type PermissionsHandler struct {
	page    *page.Responder
	service *Service
	backend Backend
	guard   *guard.Guard
	ctrl    *staged.Controller[AdminRow]
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(p *page.Responder, service *Service, backend Backend, g *guard.Guard, store staged.StateStore, busyTimeout time.Duration) *PermissionsHandler {
	return &PermissionsHandler{
		page:    p,
		service: service,
		backend: backend,
		guard:   g,
		ctrl:    staged.NewController(Schema, store, busyTimeout, p.Logger()),
	}
}

// MountRoutes registers RBAC routes under /admin/rbac.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermRBACView))
		r.Get("/", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermRBACEdit))
		r.Post("/admins/{id}/{action}", h.action)
	})
}

func stateKey(r *http.Request) string {
	return staged.Key(shared.SessionID(r.Context()), "rbac", "admins")
}

func (h *PermissionsHandler) show(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	refresh := r.URL.Query().Get("refresh") == "1"
	creds := h.page.Credentials(r)
	src := adminSource{backend: h.backend, creds: creds}

	var (
		catalogue []CatalogueEntry
		res       staged.Result[AdminRow]
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		catalogue, err = h.service.Catalogue(ctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		if refresh {
			res, err = h.ctrl.Refresh(ctx, stateKey(r), search, src)
		} else {
			res, err = h.ctrl.Ensure(ctx, stateKey(r), search, src)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.WarnDiscarded(r, res.Discarded)

	current := h.page.Session(r)
	now := h.ctrl.Now()
	admins := make([]AdminView, 0, len(res.Table.Rows))
	for _, row := range res.Table.Rows {
		admins = append(admins, AdminView{
			AdminRow:   row.Local,
			Original:   row.Original.Permissions,
			Pending:    res.Table.HasPendingChanges(Schema, row.ID),
			Confirming: row.Confirming,
			Busy:       row.IsBusy(now, h.ctrl.BusyTimeout()),
			Self:       current.Authenticated() && current.User.ID == row.ID,
		})
	}
	h.page.Render(w, r, "pages/rbac.html", "Team Access", Page{
		Catalogue: catalogue,
		Admins:    admins,
		Search:    search,
		CanEdit:   current.HasPermission(access.PermRBACEdit),
		Pending:   len(res.Table.Pending(Schema)),
	}, http.StatusOK)
}

func (h *PermissionsHandler) action(w http.ResponseWriter, r *http.Request) {
	back := basePath
	if search := strings.TrimSpace(r.PostFormValue("search")); search != "" {
		back += "?search=" + url.QueryEscape(search)
	}
	src := adminSource{backend: h.backend, creds: h.page.Credentials(r)}
	page.StagedAction(h.page, w, r, h.ctrl, stateKey(r), chi.URLParam(r, "id"), chi.URLParam(r, "action"), src, back)
}
