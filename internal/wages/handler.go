package wages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
)

// Handler manages wage endpoints.
type Handler struct {
	page    *page.Responder
	backend Backend
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(p *page.Responder, backend Backend, g *guard.Guard) *Handler {
	return &Handler{page: p, backend: backend, guard: g}
}

// MountAdminRoutes registers wage rate routes under /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermWageView))
		r.Get("/wages", h.rates)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(access.PermWageEdit))
		r.Post("/wages/{role}", h.updateRate)
	})
}

// MountWorkerRoutes registers the earnings page under /worker.
func (h *Handler) MountWorkerRoutes(r chi.Router) {
	r.Get("/wages", h.earnings)
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	h.renderRates(w, r, nil, http.StatusOK)
}

func (h *Handler) renderRates(w http.ResponseWriter, r *http.Request, errs map[string]string, status int) {
	rates, err := h.backend.ListWageRates(r.Context(), h.page.Credentials(r))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	h.page.Render(w, r, "pages/wages.html", "Wages", RatesPage{
		Rates:   mergeRates(rates),
		CanEdit: h.page.Session(r).HasPermission(access.PermWageEdit),
		Errors:  errs,
	}, status)
}

func (h *Handler) updateRate(w http.ResponseWriter, r *http.Request) {
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil || role == access.RoleAdmin {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := RateForm{Amount: r.PostForm.Get("amount")}
	if errs := h.page.Validate(form, rateMessages); len(errs) > 0 {
		errs = map[string]string{string(role): errs["Amount"]}
		h.renderRates(w, r, errs, http.StatusBadRequest)
		return
	}
	amount, err := galaxy.ParseAmount(form.Amount)
	if err != nil {
		h.renderRates(w, r, map[string]string{string(role): rateMessages["Amount"]}, http.StatusBadRequest)
		return
	}
	if err := h.backend.UpdateWageRate(r.Context(), h.page.Credentials(r), string(role), amount); err != nil {
		h.page.Fail(w, r, err, "/admin/wages")
		return
	}
	h.page.Redirect(w, r, "/admin/wages", page.FlashSuccess, role.Label()+" wage updated.")
}

func (h *Handler) earnings(w http.ResponseWriter, r *http.Request) {
	earnings, err := h.backend.MyWages(r.Context(), h.page.Credentials(r))
	if err != nil {
		h.page.FailPage(w, r, err)
		return
	}
	paid := 0
	for _, b := range earnings.Bookings {
		if b.Status == "present" {
			paid++
		}
	}
	h.page.Render(w, r, "pages/worker_wages.html", "My Wages", EarningsPage{Earnings: earnings, Paid: paid}, http.StatusOK)
}
