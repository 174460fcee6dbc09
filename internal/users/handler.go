package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	page    *page.Responder
	service *Service
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, service *Service, g *guard.Guard) *Handler {
	return &Handler{page: p, service: service, guard: g}
}

// MountRoutes registers user routes under /admin/users.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserView))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserCreate))
		r.Get("/new", h.showCreate)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserEdit))
		r.Get("/{id}/edit", h.showEdit)
		r.Post("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermUserDelete))
		r.Post("/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := galaxy.UserFilter{Search: strings.TrimSpace(q.Get("search")), Role: q.Get("role")}
	users, pagination, err := h.service.List(r.Context(), h.page.Credentials(r), filter, shared.ParsePage(q.Get("page")))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	current := h.page.Session(r)
	h.page.Render(w, r, "pages/users_list.html", "Users", ListPage{
		Users:      users,
		Search:     filter.Search,
		Role:       filter.Role,
		Roles:      roleOptions(),
		Pagination: pagination,
		CanCreate:  current.HasPermission(access.PermUserCreate),
		CanEdit:    current.HasPermission(access.PermUserEdit),
		CanDelete:  current.HasPermission(access.PermUserDelete),
	}, http.StatusOK)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, FormPage{Form: Form{Role: string(access.RoleJuniorBoy), IsActive: true}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := parseForm(w, r)
	if !ok {
		return
	}
	errs := h.page.Validate(form, formMessages)
	if form.Password == "" {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["Password"] = "Password is required for a new user."
	}
	if len(errs) > 0 {
		h.renderForm(w, r, FormPage{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	user, err := h.service.Create(r.Context(), h.page.Credentials(r), form)
	if err != nil {
		if errors.Is(err, access.ErrUnknownRole) {
			h.renderForm(w, r, FormPage{Form: form, Errors: map[string]string{"Role": formMessages["Role"]}}, http.StatusBadRequest)
			return
		}
		h.page.Fail(w, r, err, "/admin/users/new")
		return
	}
	h.page.Redirect(w, r, "/admin/users", page.FlashSuccess, "User "+user.Name+" created.")
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.Get(r.Context(), h.page.Credentials(r), id)
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.renderForm(w, r, FormPage{ID: id, Form: formFromUser(user)}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, ok := parseForm(w, r)
	if !ok {
		return
	}
	if errs := h.page.Validate(form, formMessages); len(errs) > 0 {
		h.renderForm(w, r, FormPage{ID: id, Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	if _, err := h.service.Update(r.Context(), h.page.Credentials(r), id, form); err != nil {
		if errors.Is(err, access.ErrUnknownRole) {
			h.renderForm(w, r, FormPage{ID: id, Form: form, Errors: map[string]string{"Role": formMessages["Role"]}}, http.StatusBadRequest)
			return
		}
		h.page.Fail(w, r, err, "/admin/users/"+id+"/edit")
		return
	}
	h.page.Redirect(w, r, "/admin/users", page.FlashSuccess, "User updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if current := h.page.Session(r); current.Authenticated() && current.User.ID == id {
		h.page.Redirect(w, r, "/admin/users", page.FlashError, "You cannot delete your own account.")
		return
	}
	if err := h.service.Delete(r.Context(), h.page.Credentials(r), id); err != nil {
		h.page.Fail(w, r, err, "/admin/users")
		return
	}
	h.page.Redirect(w, r, "/admin/users", page.FlashSuccess, "User deleted.")
}

func parseForm(w http.ResponseWriter, r *http.Request) (Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return Form{}, false
	}
	return Form{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Role:     r.PostFormValue("role"),
		Password: r.PostFormValue("password"),
		IsActive: r.PostFormValue("is_active") == "on",
	}, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data FormPage, status int) {
	data.Roles = roleOptions()
	data.Form.Password = ""
	title := "New user"
	if data.ID != "" {
		title = "Edit user"
	}
	h.page.Render(w, r, "pages/user_form.html", title, data, status)
}
