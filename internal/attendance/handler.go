package attendance

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

// Handler serves event attendance sheets.
type Handler struct {
	page    *page.Responder
	backend Backend
	guard   *guard.Guard
	admin   *staged.Controller[Row]
	captain *staged.Controller[Row]
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend, g *guard.Guard, store staged.StateStore, busyTimeout time.Duration) *Handler {
	return &Handler{
		page:    p,
		backend: backend,
		guard:   g,
		admin:   staged.NewController(AdminSchema, store, busyTimeout, p.Logger()),
		captain: staged.NewController(CaptainSchema, store, busyTimeout, p.Logger()),
	}
}

// MountAdminRoutes registers the admin sheet under /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermEventView, access.PermAttendanceView))
		r.Get("/events/{id}", h.showAdmin)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermAttendanceEdit))
		r.Post("/events/{id}/attendance/{bookingID}/{action}", h.adminAction)
	})
}

// MountCaptainRoutes registers the captain sheet under /captain.
func (h *Handler) MountCaptainRoutes(r chi.Router) {
	r.Get("/events/{id}", h.showCaptain)
	r.Post("/events/{id}/attendance/{bookingID}/{action}", h.captainAction)
}

// RowView is a staged row prepared for the template.
type RowView struct {
	Row
	Original   Row
	Total      int64
	Pending    bool
	Confirming bool
	Busy       bool
}

// Sheet is the view model of both attendance pages.
type Sheet struct {
	Event    galaxy.Event
	Rows     []RowView
	Search   string
	CanEdit  bool
	Statuses []string
	Action   string
	Pending  int
	Summary  Summary
}

// Summary totals the sheet from local values.
type Summary struct {
	Present int
	Absent  int
	Booked  int
	Payout  int64
}

func buildSheet(ctrl *staged.Controller[Row], table *staged.Table[Row]) ([]RowView, Summary, int) {
	schema := ctrl.Schema()
	now := ctrl.Now()
	rows := make([]RowView, 0, len(table.Rows))
	var sum Summary
	for _, row := range table.Rows {
		rv := RowView{
			Row:        row.Local,
			Original:   row.Original,
			Total:      row.Local.Total(),
			Pending:    table.HasPendingChanges(schema, row.ID),
			Confirming: row.Confirming,
			Busy:       row.IsBusy(now, ctrl.BusyTimeout()),
		}
		switch row.Local.Status {
		case StatusPresent:
			sum.Present++
			sum.Payout += rv.Total
		case StatusAbsent:
			sum.Absent++
		case StatusBooked:
			sum.Booked++
		}
		rows = append(rows, rv)
	}
	return rows, sum, len(table.Pending(schema))
}

func stateKey(r *http.Request, scope, eventID string) string {
	return staged.Key(shared.SessionID(r.Context()), "attendance", scope, eventID)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, ctrl *staged.Controller[Row], key string, src staged.Source[Row]) (*staged.Table[Row], string, bool) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	var (
		res staged.Result[Row]
		err error
	)
	if r.URL.Query().Get("refresh") == "1" {
		res, err = ctrl.Refresh(r.Context(), key, search, src)
	} else {
		res, err = ctrl.Ensure(r.Context(), key, search, src)
	}
	if err != nil {
		h.page.FailPage(w, r, err)
		return nil, "", false
	}
	h.page.WarnDiscarded(r, res.Discarded)
	return res.Table, search, true
}

func (h *Handler) showAdmin(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	creds := h.page.Credentials(r)
	event, err := h.backend.GetEvent(r.Context(), creds, galaxy.ID(eventID))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	src := adminSource{backend: h.backend, creds: creds, eventID: galaxy.ID(eventID)}
	table, search, ok := h.load(w, r, h.admin, stateKey(r, "admin", eventID), src)
	if !ok {
		return
	}
	rows, summary, pending := buildSheet(h.admin, table)
	h.page.Render(w, r, "pages/event_detail.html", event.Name, Sheet{
		Event:    event,
		Rows:     rows,
		Search:   search,
		CanEdit:  h.page.Session(r).HasPermission(access.PermAttendanceEdit),
		Statuses: Statuses,
		Action:   "/admin/events/" + eventID + "/attendance/",
		Pending:  pending,
		Summary:  summary,
	}, http.StatusOK)
}

func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	src := adminSource{backend: h.backend, creds: h.page.Credentials(r), eventID: galaxy.ID(eventID)}
	page.StagedAction(h.page, w, r, h.admin, stateKey(r, "admin", eventID), chi.URLParam(r, "bookingID"), chi.URLParam(r, "action"), src, backTo(r, "/admin/events/"+eventID))
}

func (h *Handler) showCaptain(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	creds := h.page.Credentials(r)
	events, err := h.backend.CaptainEvents(r.Context(), creds)
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	var event *galaxy.Event
	for i := range events {
		if events[i].ID.String() == eventID {
			event = &events[i]
			break
		}
	}
	if event == nil {
		h.page.FailPage(w, r, &galaxy.APIError{Op: "captain event", Status: http.StatusNotFound, Message: "Event not found or not assigned to you."})
		return
	}
	src := captainSource{backend: h.backend, creds: creds, eventID: galaxy.ID(eventID)}
	table, search, ok := h.load(w, r, h.captain, stateKey(r, "captain", eventID), src)
	if !ok {
		return
	}
	rows, summary, pending := buildSheet(h.captain, table)
	h.page.Render(w, r, "pages/captain_event_detail.html", event.Name, Sheet{
		Event:    *event,
		Rows:     rows,
		Search:   search,
		CanEdit:  true,
		Statuses: CaptainStatuses,
		Action:   "/captain/events/" + eventID + "/attendance/",
		Pending:  pending,
		Summary:  summary,
	}, http.StatusOK)
}

func (h *Handler) captainAction(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	src := captainSource{backend: h.backend, creds: h.page.Credentials(r), eventID: galaxy.ID(eventID)}
	page.StagedAction(h.page, w, r, h.captain, stateKey(r, "captain", eventID), chi.URLParam(r, "bookingID"), chi.URLParam(r, "action"), src, backTo(r, "/captain/events/"+eventID))
}

// backTo keeps the search of the sheet the form was posted from.
func backTo(r *http.Request, base string) string {
	if search := strings.TrimSpace(r.PostFormValue("search")); search != "" {
		return base + "?search=" + url.QueryEscape(search)
	}
	return base
}
