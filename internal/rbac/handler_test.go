package rbac_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/rbac"
	"github.com/galaxy-staffing/galaxy-web/internal/testing/webtest"
)

type fakeBackend struct {
	catalogue []galaxy.PermissionInfo
	admins    []galaxy.AdminUser
	saved     map[galaxy.ID][]string
	saveErr   error
}

func (f *fakeBackend) ListPermissions(context.Context, *galaxy.Credentials) ([]galaxy.PermissionInfo, error) {
	return f.catalogue, nil
}

func (f *fakeBackend) ListAdmins(context.Context, *galaxy.Credentials, string) ([]galaxy.AdminUser, error) {
	return append([]galaxy.AdminUser(nil), f.admins...), nil
}

func (f *fakeBackend) UpdateAdminPermissions(_ context.Context, _ *galaxy.Credentials, id galaxy.ID, perms []string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = make(map[galaxy.ID][]string)
	}
	f.saved[id] = perms
	for i := range f.admins {
		if f.admins[i].ID == id {
			f.admins[i].Permissions = perms
		}
	}
	return nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		catalogue: []galaxy.PermissionInfo{
			{Slug: "event:view", Description: "See events"},
			{Slug: "report:export", Description: "Export reports"},
		},
		admins: []galaxy.AdminUser{
			{ID: "1", Name: "Asha Admin", Permissions: []string{"rbac:view", "rbac:edit"}},
			{ID: "9", Name: "Dev Ops", Phone: "9000000009", Permissions: []string{"event:view", "report:export"}},
		},
	}
}

func setup(t *testing.T) (*webtest.Harness, *fakeBackend) {
	t.Helper()
	h := webtest.New(t, nil)
	backend := newBackend()
	handler := rbac.NewPermissionsHandler(h.Page, rbac.NewService(backend), backend, h.Guard, h.States, webtest.BusyTimeout)
	h.Shell("/admin", access.ShellAdmin, func(r chi.Router) {
		r.Route("/rbac", handler.MountRoutes)
	})
	return h, backend
}

func TestCatalogueMergesKnownAndOffered(t *testing.T) {
	svc := rbac.NewService(newBackend())
	entries, err := svc.Catalogue(context.Background(), nil)
	require.NoError(t, err)

	bySlug := make(map[string]rbac.CatalogueEntry, len(entries))
	for _, e := range entries {
		bySlug[e.Slug] = e
	}
	assert.Len(t, entries, len(access.AllPermissions())+1)
	assert.Equal(t, rbac.CatalogueEntry{Slug: "event:view", Description: "See events", Known: true, Offered: true}, bySlug["event:view"])
	assert.Equal(t, rbac.CatalogueEntry{Slug: "report:export", Description: "Export reports", Offered: true}, bySlug["report:export"])
	assert.True(t, bySlug["wage:edit"].Known)
	assert.False(t, bySlug["wage:edit"].Offered)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Slug, entries[i].Slug)
	}
}

func TestShowMarksSelfAndUnknownSlugs(t *testing.T) {
	h, _ := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)

	res := h.Get("/admin/rbac")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Team Access")
	assert.Contains(t, body, "not used here")
	assert.Contains(t, body, `<span class="badge">you</span>`)
	assert.Contains(t, body, "/admin/rbac/admins/9/update")
}

func TestGrantPermissionsThroughConfirmation(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)
	require.Equal(t, http.StatusOK, h.Get("/admin/rbac").Code)

	form := url.Values{"permissions": {"", "event:view", "wage:view"}}
	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/commit", form).Code)
	assert.Empty(t, backend.saved)

	res := h.Post("/admin/rbac/admins/9/confirm", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []string{"event:view", "report:export", "wage:view"}, backend.saved["9"])
	assert.Contains(t, h.Follow(res).Body.String(), "Changes saved.")
}

func TestRevokeEverything(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)
	require.Equal(t, http.StatusOK, h.Get("/admin/rbac").Code)

	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/commit", url.Values{"permissions": {""}}).Code)
	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/confirm", nil).Code)
	assert.Equal(t, []string{"report:export"}, backend.saved["9"])
}

func TestUnknownGrantsSurviveSave(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)

	body := h.Get("/admin/rbac").Body.String()
	assert.Contains(t, body, "Kept unchanged on save: <code>report:export</code>")
	assert.NotContains(t, body, `value="report:export"`)

	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/commit", url.Values{"permissions": {"", "event:view", "user:view"}}).Code)
	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/confirm", nil).Code)
	assert.Equal(t, []string{"event:view", "report:export", "user:view"}, backend.saved["9"])
}

func TestUnknownSlugIsRejected(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)
	require.Equal(t, http.StatusOK, h.Get("/admin/rbac").Code)

	res := h.Post("/admin/rbac/admins/9/update", url.Values{"permissions": {"event:view", "payroll:approve"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, h.Follow(res).Body.String(), "Invalid value for permissions.")
	assert.Empty(t, backend.saved)
}

func TestForbiddenSaveKeepsEdits(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView, access.PermRBACEdit)
	require.Equal(t, http.StatusOK, h.Get("/admin/rbac").Code)
	backend.saveErr = &galaxy.APIError{Op: "update permissions", Status: http.StatusForbidden, Message: "Only super admins may change permissions"}

	require.Equal(t, http.StatusSeeOther, h.Post("/admin/rbac/admins/9/commit", url.Values{"permissions": {"wage:view"}}).Code)
	res := h.Post("/admin/rbac/admins/9/confirm", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	body := h.Follow(res).Body.String()
	assert.Contains(t, body, "Only super admins may change permissions")
	assert.Contains(t, body, "1 unsaved")
	assert.True(t, h.SignedIn())
}

func TestViewOnlyHidesEditor(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermRBACView)

	res := h.Get("/admin/rbac")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, res.Body.String(), "/admin/rbac/admins/9/update")

	res = h.Post("/admin/rbac/admins/9/update", url.Values{"permissions": {"wage:view"}})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/rbac", res.Header().Get("Location"))
	assert.Empty(t, backend.saved)
}
