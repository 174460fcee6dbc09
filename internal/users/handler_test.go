package users_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/testing/webtest"
	"github.com/galaxy-staffing/galaxy-web/internal/users"
)

type fakeBackend struct {
	users   []galaxy.User
	filter  galaxy.UserFilter
	created []galaxy.UserInput
	updated map[galaxy.ID]galaxy.UserInput
	deleted []galaxy.ID
}

func (f *fakeBackend) ListUsers(_ context.Context, _ *galaxy.Credentials, filter galaxy.UserFilter) ([]galaxy.User, error) {
	f.filter = filter
	return append([]galaxy.User(nil), f.users...), nil
}

func (f *fakeBackend) GetUser(_ context.Context, _ *galaxy.Credentials, id galaxy.ID) (galaxy.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return galaxy.User{}, &galaxy.APIError{Op: "get user", Status: http.StatusNotFound, Message: "User not found"}
}

func (f *fakeBackend) CreateUser(_ context.Context, _ *galaxy.Credentials, input galaxy.UserInput) (galaxy.User, error) {
	f.created = append(f.created, input)
	return galaxy.User{ID: "50", Name: input.Name, Role: input.Role}, nil
}

func (f *fakeBackend) UpdateUser(_ context.Context, _ *galaxy.Credentials, id galaxy.ID, input galaxy.UserInput) (galaxy.User, error) {
	if f.updated == nil {
		f.updated = make(map[galaxy.ID]galaxy.UserInput)
	}
	f.updated[id] = input
	return galaxy.User{ID: id, Name: input.Name}, nil
}

func (f *fakeBackend) DeleteUser(_ context.Context, _ *galaxy.Credentials, id galaxy.ID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func setup(t *testing.T) (*webtest.Harness, *fakeBackend) {
	t.Helper()
	h := webtest.New(t, nil)
	backend := &fakeBackend{users: []galaxy.User{
		{ID: "3", Name: "zara", Phone: "9000000003", Role: "main_boy", IsActive: true},
		{ID: "2", Name: "Bala", Phone: "9000000002", Role: "captain", IsActive: true},
		{ID: "1", Name: "Asha Admin", Phone: "9000000001", Role: "admin", IsActive: true},
	}}
	handler := users.NewHandler(h.Page, users.NewService(backend), h.Guard)
	h.Shell("/admin", access.ShellAdmin, func(r chi.Router) {
		r.Route("/users", handler.MountRoutes)
	})
	return h, backend
}

func TestListSortsByName(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserView)

	res := h.Get("/admin/users?search=a&role=captain")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Less(t, strings.Index(body, "9000000001"), strings.Index(body, "9000000002"))
	assert.Less(t, strings.Index(body, "9000000002"), strings.Index(body, "9000000003"))
	assert.NotContains(t, body, "New user")
	assert.Equal(t, galaxy.UserFilter{Search: "a", Role: "captain"}, backend.filter)
}

func TestListPaginates(t *testing.T) {
	h, backend := setup(t)
	backend.users = nil
	for i := 0; i < 45; i++ {
		backend.users = append(backend.users, galaxy.User{ID: galaxy.ID(fmt.Sprint(i)), Name: fmt.Sprintf("Worker %02d", i), Role: "junior_boy"})
	}
	h.Admin(access.PermUserView)

	body := h.Get("/admin/users?page=3").Body.String()
	assert.Contains(t, body, "Worker 40")
	assert.Contains(t, body, "Worker 44")
	assert.NotContains(t, body, "Worker 39")
}

func TestCreateRequiresPassword(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserView, access.PermUserCreate)

	res := h.Post("/admin/users", url.Values{"name": {"Neha"}, "phone": {"9123456789"}, "role": {"junior_boy"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Password is required for a new user.")
	assert.Empty(t, backend.created)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserCreate)

	res := h.Post("/admin/users", url.Values{"name": {"Neha"}, "phone": {"9123456789"}, "role": {"manager"}, "password": {"secret1"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Choose a role.")
	assert.Empty(t, backend.created)
}

func TestCreateUser(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserView, access.PermUserCreate)

	res := h.Post("/admin/users", url.Values{
		"name": {"Neha"}, "phone": {"9123456789"}, "role": {"junior_boy"}, "password": {"secret1"}, "is_active": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Len(t, backend.created, 1)
	assert.Equal(t, galaxy.UserInput{Name: "Neha", Phone: "9123456789", Role: "junior_boy", Password: "secret1", IsActive: true}, backend.created[0])
	assert.Contains(t, h.Follow(res).Body.String(), "User Neha created.")
}

func TestEditNeverEchoesPassword(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserEdit)

	res := h.Post("/admin/users/3", url.Values{"name": {""}, "phone": {"9000000003"}, "role": {"main_boy"}, "password": {"hunter22"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Name is required")
	assert.NotContains(t, body, "hunter22")
	assert.Empty(t, backend.updated)
}

func TestUpdateUser(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserView, access.PermUserEdit)

	res := h.Get("/admin/users/2/edit")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `value="Bala"`)

	res = h.Post("/admin/users/2", url.Values{"name": {"Bala K"}, "phone": {"9000000002"}, "role": {"sub_captain"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, galaxy.UserInput{Name: "Bala K", Phone: "9000000002", Role: "sub_captain"}, backend.updated["2"])
}

func TestCannotDeleteSelf(t *testing.T) {
	h, backend := setup(t)
	h.Admin(access.PermUserView, access.PermUserDelete)

	res := h.Post("/admin/users/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Empty(t, backend.deleted)
	assert.Contains(t, h.Follow(res).Body.String(), "You cannot delete your own account.")

	res = h.Post("/admin/users/3/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []galaxy.ID{"3"}, backend.deleted)
}

func TestUsersNeedPermission(t *testing.T) {
	h, _ := setup(t)
	h.Admin(access.PermEventView)

	res := h.Get("/admin/users")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/events", res.Header().Get("Location"))
}
