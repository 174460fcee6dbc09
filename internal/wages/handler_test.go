package wages_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/testing/webtest"
	"github.com/galaxy-staffing/galaxy-web/internal/wages"
)

type fakeBackend struct {
	rates    []galaxy.WageRate
	updates  map[string]int64
	earnings galaxy.Earnings
}

func (f *fakeBackend) ListWageRates(context.Context, *galaxy.Credentials) ([]galaxy.WageRate, error) {
	return f.rates, nil
}

func (f *fakeBackend) UpdateWageRate(_ context.Context, _ *galaxy.Credentials, role string, amount int64) error {
	if f.updates == nil {
		f.updates = make(map[string]int64)
	}
	f.updates[role] = amount
	return nil
}

func (f *fakeBackend) MyWages(context.Context, *galaxy.Credentials) (galaxy.Earnings, error) {
	return f.earnings, nil
}

func setup(t *testing.T) (*webtest.Harness, *fakeBackend) {
	t.Helper()
	h := webtest.New(t, nil)
	backend := &fakeBackend{
		rates: []galaxy.WageRate{{Role: "captain", BaseAmount: 1200}, {Role: "main_boy", BaseAmount: 500}},
		earnings: galaxy.Earnings{Total: 1370, Bookings: []galaxy.Booking{
			{ID: "b1", EventName: "Sharma Wedding", Status: "present", BaseAmount: 500, ExtraAmount: 100, TAAmount: 50, BonusAmount: 20, FineAmount: 10, TotalAmount: 660},
			{ID: "b2", EventName: "Tech Summit", Status: "present", BaseAmount: 500, ExtraAmount: 200, TotalAmount: 710},
			{ID: "b3", EventName: "Gala Dinner", Status: "absent"},
		}},
	}
	handler := wages.NewHandler(h.Page, backend, h.Guard)
	h.Shell("/admin", access.ShellAdmin, handler.MountAdminRoutes)
	h.Shell("/worker", access.ShellWorker, handler.MountWorkerRoutes)
	return h, backend
}

func TestRatesListWorkerRolesOnly(t *testing.T) {
	h, _ := setup(t)
	h.Admin(access.PermWageView)

	res := h.Get("/admin/wages")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "₹1,200")
	assert.Contains(t, body, "Junior Boy")
	assert.Contains(t, body, "not set")
	assert.NotContains(t, body, "/admin/wages/admin")
	assert.NotContains(t, body, `name="amount"`)
}

func TestUpdateRate(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermWageView, access.PermWageEdit)

	res := h.Post("/admin/wages/junior_boy", url.Values{"amount": {"450"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/wages", res.Header().Get("Location"))
	assert.Equal(t, map[string]int64{"junior_boy": 450}, backend.updates)
	assert.Contains(t, h.Follow(res).Body.String(), "Junior Boy wage updated.")
}

func TestUpdateRateRejectsBadAmounts(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermWageView, access.PermWageEdit)

	for _, amount := range []string{"", "-5", "12.5", "abc"} {
		res := h.Post("/admin/wages/captain", url.Values{"amount": {amount}})
		require.Equal(t, http.StatusBadRequest, res.Code, amount)
		assert.Contains(t, res.Body.String(), "Enter the base amount in whole rupees", amount)
	}
	assert.Empty(t, backend.updates)
}

func TestUpdateRateUnknownRole(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermWageView, access.PermWageEdit)

	assert.Equal(t, http.StatusNotFound, h.Post("/admin/wages/admin", url.Values{"amount": {"1"}}).Code)
	assert.Equal(t, http.StatusNotFound, h.Post("/admin/wages/chef", url.Values{"amount": {"1"}}).Code)
	assert.Empty(t, backend.updates)
}

func TestWorkerEarnings(t *testing.T) {
	h, _ := setup(t)
	h.As(access.RoleMainBoy)

	res := h.Get("/worker/wages")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "₹1,370")
	assert.Contains(t, body, "₹660")
	assert.Contains(t, body, "<strong>2</strong>")
}

func TestCaptainCannotOpenWorkerWages(t *testing.T) {
	h, _ := setup(t)
	h.As(access.RoleCaptain)

	res := h.Get("/worker/wages")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/captain/dashboard", res.Header().Get("Location"))
}
