package bookings

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
)

// Handler manages worker booking endpoints.
type Handler struct {
	page    *page.Responder
	backend Backend
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend) *Handler {
	return &Handler{page: p, backend: backend}
}

// MountRoutes registers booking routes under /worker.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/events", h.openEvents)
	r.Post("/events/{id}/book", h.book)
	r.Get("/bookings", h.myBookings)
	r.Post("/bookings/{id}/cancel", h.cancel)
}

func (h *Handler) openEvents(w http.ResponseWriter, r *http.Request) {
	creds := h.page.Credentials(r)
	var (
		events []galaxy.Event
		mine   []galaxy.Booking
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		events, err = h.backend.OpenEvents(ctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = h.backend.MyBookings(ctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/worker_events.html", "Open Events", EventsPage{Events: markBooked(events, mine)}, http.StatusOK)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.BookEvent(r.Context(), h.page.Credentials(r), galaxy.ID(id)); err != nil {
		h.page.Fail(w, r, err, "/worker/events")
		return
	}
	h.page.Redirect(w, r, "/worker/bookings", page.FlashSuccess, "Booking confirmed.")
}

func (h *Handler) myBookings(w http.ResponseWriter, r *http.Request) {
	all, err := h.backend.MyBookings(r.Context(), h.page.Credentials(r))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/worker_bookings.html", "My Bookings", splitBookings(all), http.StatusOK)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.CancelBooking(r.Context(), h.page.Credentials(r), galaxy.ID(id)); err != nil {
		h.page.Fail(w, r, err, "/worker/bookings")
		return
	}
	h.page.Redirect(w, r, "/worker/bookings", page.FlashSuccess, "Booking cancelled.")
}
