package shell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

func session(role access.Role, perms ...access.Permission) *auth.Session {
	return &auth.Session{User: &auth.Identity{ID: "1", Name: "Meera", Role: role, Permissions: access.NewSet(perms...)}}
}

func labels(items []NavItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestVisibleFiltersByPermission(t *testing.T) {
	assert.Equal(t, []string{"Events", "Wages", "Profile"}, labels(Visible(session(access.RoleAdmin, access.PermAttendanceView, access.PermWageView))))
	assert.Equal(t, []string{"Profile"}, labels(Visible(session(access.RoleAdmin))))
	assert.Equal(t, []string{"Dashboard", "My Events", "Profile"}, labels(Visible(session(access.RoleSubCaptain, access.PermRBACView))))
	assert.Len(t, Visible(session(access.RoleJuniorBoy)), 5)
	assert.Nil(t, Visible(&auth.Session{}))
}

func TestEveryAdminLandingIsVisible(t *testing.T) {
	for _, perm := range access.AllPermissions() {
		sess := session(access.RoleAdmin, perm)
		landing := sess.Landing()
		found := false
		for _, item := range Visible(sess) {
			if item.Path == landing {
				found = true
			}
		}
		assert.True(t, found, "landing %s for %s has no visible entry", landing, perm)
	}
}

func newSharedSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	sm := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "s", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func requestFor(method, path string, body url.Values, sess *shared.Session, current *auth.Session) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = auth.WithSession(ctx, current)
	return req.WithContext(ctx)
}

func TestBuildMarksLongestActivePath(t *testing.T) {
	sess := newSharedSession(t)
	current := session(access.RoleAdmin, access.PermUserView)

	sh := Build(requestFor(http.MethodGet, "/admin/users/roles", nil, sess, current))

	require.NotNil(t, sh)
	assert.Equal(t, "admin", sh.Kind)
	assert.Equal(t, "Meera", sh.UserName)
	assert.Equal(t, "Admin", sh.RoleLabel)
	var active []string
	for _, link := range sh.Items {
		if link.Active {
			active = append(active, link.Path)
		}
	}
	assert.Equal(t, []string{"/admin/users/roles"}, active)
}

func TestSidebarCollapseIsPerShell(t *testing.T) {
	sess := newSharedSession(t)
	captain := session(access.RoleCaptain)
	h := NewHandler()

	rr := httptest.NewRecorder()
	h.toggleSidebar(rr, requestFor(http.MethodPost, "/shell/sidebar", url.Values{"return": {"/captain/events"}}, sess, captain))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/captain/events", rr.Header().Get("Location"))
	assert.Equal(t, "1", sess.Get(CollapseKey(access.ShellCaptain)))
	assert.Empty(t, sess.Get(CollapseKey(access.ShellAdmin)))
	assert.True(t, Build(requestFor(http.MethodGet, "/captain/events", nil, sess, captain)).Collapsed)
	assert.False(t, Build(requestFor(http.MethodGet, "/admin/profile", nil, sess, session(access.RoleAdmin))).Collapsed)

	rr = httptest.NewRecorder()
	h.toggleSidebar(rr, requestFor(http.MethodPost, "/shell/sidebar", url.Values{"return": {"//evil.example"}}, sess, captain))
	assert.Equal(t, "/captain/dashboard", rr.Header().Get("Location"))
	assert.Empty(t, sess.Get(CollapseKey(access.ShellCaptain)))
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/a", SafeReturn("/a", "/f"))
	assert.Equal(t, "/f", SafeReturn("https://x", "/f"))
	assert.Equal(t, "/f", SafeReturn("//x", "/f"))
	assert.Equal(t, "/f", SafeReturn("/\\x", "/f"))
	assert.Equal(t, "/f", SafeReturn("", "/f"))
}
