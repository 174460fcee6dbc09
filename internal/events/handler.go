package events

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

// Handler manages event endpoints.
type Handler struct {
	page    *page.Responder
	backend Backend
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend, g *guard.Guard) *Handler {
	return &Handler{page: p, backend: backend, guard: g}
}

// MountAdminRoutes registers event management under /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermEventView, access.PermAttendanceView))
		r.Get("/events", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermEventCreate))
		r.Get("/events/new", h.showCreate)
		r.Post("/events", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermEventEdit))
		r.Get("/events/{id}/edit", h.showEdit)
		r.Post("/events/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermEventDelete))
		r.Post("/events/{id}/delete", h.delete)
	})
}

// MountCaptainRoutes registers the captain event list under /captain.
func (h *Handler) MountCaptainRoutes(r chi.Router) {
	r.Get("/events", h.captainList)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := galaxy.EventFilter{Search: strings.TrimSpace(q.Get("search")), Status: q.Get("status")}
	events, err := h.backend.ListEvents(r.Context(), h.page.Credentials(r), filter)
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	window, pagination := shared.Paginate(events, shared.ParsePage(q.Get("page")), perPage)
	current := h.page.Session(r)
	h.page.Render(w, r, "pages/events_list.html", "Events", ListPage{
		Events:     window,
		Search:     filter.Search,
		Status:     filter.Status,
		Statuses:   Statuses,
		Pagination: pagination,
		CanCreate:  current.HasPermission(access.PermEventCreate),
		CanEdit:    current.HasPermission(access.PermEventEdit),
		CanDelete:  current.HasPermission(access.PermEventDelete),
	}, http.StatusOK)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, FormPage{Form: Form{Status: Statuses[0], RequiredStaff: "1"}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	input, errs := h.check(form)
	if len(errs) > 0 {
		h.renderForm(w, r, FormPage{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	event, err := h.backend.CreateEvent(r.Context(), h.page.Credentials(r), input)
	if err != nil {
		h.page.Fail(w, r, err, "/admin/events/new")
		return
	}
	h.page.Redirect(w, r, "/admin/events", page.FlashSuccess, "Event "+event.Name+" created.")
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := h.backend.GetEvent(r.Context(), h.page.Credentials(r), galaxy.ID(id))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.renderForm(w, r, FormPage{ID: id, Form: formFromEvent(event)}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	input, errs := h.check(form)
	if len(errs) > 0 {
		h.renderForm(w, r, FormPage{ID: id, Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	if _, err := h.backend.UpdateEvent(r.Context(), h.page.Credentials(r), galaxy.ID(id), input); err != nil {
		h.page.Fail(w, r, err, "/admin/events/"+id+"/edit")
		return
	}
	h.page.Redirect(w, r, "/admin/events/"+id, page.FlashSuccess, "Event updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteEvent(r.Context(), h.page.Credentials(r), galaxy.ID(id)); err != nil {
		h.page.Fail(w, r, err, "/admin/events")
		return
	}
	h.page.Redirect(w, r, "/admin/events", page.FlashSuccess, "Event deleted.")
}

func (h *Handler) captainList(w http.ResponseWriter, r *http.Request) {
	events, err := h.backend.CaptainEvents(r.Context(), h.page.Credentials(r))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/captain_events.html", "My Events", CaptainListPage{Events: events}, http.StatusOK)
}

// check validates the form and converts it. Nothing reaches the backend
// unless errs is empty.
func (h *Handler) check(form Form) (galaxy.EventInput, map[string]string) {
	if errs := h.page.Validate(form, formMessages); len(errs) > 0 {
		return galaxy.EventInput{}, errs
	}
	return form.input()
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return Form{}, false
	}
	return Form{
		Name:          strings.TrimSpace(r.PostFormValue("name")),
		Venue:         strings.TrimSpace(r.PostFormValue("venue")),
		Date:          strings.TrimSpace(r.PostFormValue("date")),
		ReportingTime: strings.TrimSpace(r.PostFormValue("reporting_time")),
		Status:        r.PostFormValue("status"),
		RequiredStaff: strings.TrimSpace(r.PostFormValue("required_staff")),
		ExtraAmount:   strings.TrimSpace(r.PostFormValue("extra_amount")),
		CaptainID:     r.PostFormValue("captain_id"),
		Description:   strings.TrimSpace(r.PostFormValue("description")),
	}, true
}

// renderForm loads captain choices; a failure there only empties the list.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data FormPage, status int) {
	data.Statuses = Statuses
	users, err := h.backend.ListUsers(r.Context(), h.page.Credentials(r), galaxy.UserFilter{})
	if err != nil {
		h.page.Logger().Warn("load captain choices", slog.Any("error", err))
	}
	for _, u := range users {
		if role, err := access.ParseRole(u.Role); err == nil && access.HasAnyRole(role, access.ShellRoles(access.ShellCaptain)...) {
			data.Captains = append(data.Captains, u)
		}
	}
	title := "New event"
	if data.ID != "" {
		title = "Edit event"
	}
	h.page.Render(w, r, "pages/event_form.html", title, data, status)
}
