package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
)

// Handler serves dashboards and profiles.
type Handler struct {
	page    *page.Responder
	backend Backend
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend, g *guard.Guard) *Handler {
	return &Handler{page: p, backend: backend, guard: g}
}

// MountAdminRoutes registers the admin dashboard and profile under /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.With(h.guard.RequirePermission(access.PermDashboardView)).Get("/dashboard", h.admin)
	r.Get("/profile", h.profile)
}

// MountCaptainRoutes registers the captain dashboard and profile under /captain.
func (h *Handler) MountCaptainRoutes(r chi.Router) {
	r.Get("/dashboard", h.captain)
	r.Get("/profile", h.profile)
}

// MountWorkerRoutes registers the worker dashboard and profile under /worker.
func (h *Handler) MountWorkerRoutes(r chi.Router) {
	r.Get("/dashboard", h.worker)
	r.Get("/profile", h.profile)
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	creds := h.page.Credentials(r)
	current := h.page.Session(r)
	canEvent := current.HasPermission(access.PermEventView)
	var data AdminPage
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.Stats, err = h.backend.DashboardStats(ctx, creds)
		return err
	})
	if canEvent {
		g.Go(func() error {
			events, err := h.backend.ListEvents(ctx, creds, galaxy.EventFilter{Status: "upcoming"})
			data.Upcoming = firstN(events, upcomingLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	data.CanEvent = canEvent
	h.page.Render(w, r, "pages/admin_dashboard.html", "Dashboard", data, http.StatusOK)
}

func (h *Handler) captain(w http.ResponseWriter, r *http.Request) {
	creds := h.page.Credentials(r)
	var (
		events   []galaxy.Event
		earnings galaxy.Earnings
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		events, err = h.backend.CaptainEvents(ctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		earnings, err = h.backend.MyWages(ctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/captain_dashboard.html", "Dashboard", CaptainPage{
		Events:   firstN(events, upcomingLimit),
		Assigned: len(events),
		Earnings: earnings.Total,
	}, http.StatusOK)
}

func (h *Handler) worker(w http.ResponseWriter, r *http.Request) {
	creds := h.page.Credentials(r)
	var (
		open     []galaxy.Event
		mine     []galaxy.Booking
		earnings galaxy.Earnings
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		open, err = h.backend.OpenEvents(ctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = h.backend.MyBookings(ctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		earnings, err = h.backend.MyWages(ctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	data := WorkerPage{OpenEvents: firstN(open, upcomingLimit), Earnings: earnings.Total}
	for _, b := range mine {
		switch b.Status {
		case "booked":
			data.Upcoming = append(data.Upcoming, b)
		case "present":
			data.Completed++
		}
	}
	h.page.Render(w, r, "pages/worker_dashboard.html", "Dashboard", data, http.StatusOK)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.backend.Me(r.Context(), h.page.Credentials(r))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/profile.html", "Profile", profileFrom(user), http.StatusOK)
}
