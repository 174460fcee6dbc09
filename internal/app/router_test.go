package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/app"
	"github.com/galaxy-staffing/galaxy-web/internal/observability"
	_ "github.com/galaxy-staffing/galaxy-web/testing"
)

var tokenPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// fakeAPI answers the handful of backend endpoints the flows below touch.
func fakeAPI(t *testing.T, permissions []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Phone    string `json:"phone"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Invalid credentials"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{
			"id": 1, "name": "Asha Admin", "role": "admin", "permissions": permissions, "is_active": true,
		}})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("access_token"); err != nil || c.Value != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Login required"}`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":1,"name":"Sharma Wedding","venue":"Palace Grounds","date":"2026-11-02","status":"upcoming","required_staff":10}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newApp(t *testing.T, permissions ...string) *browser {
	t.Helper()
	api := fakeAPI(t, permissions)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &app.Config{
		AppEnv:            "development",
		AppRequestTimeout: 5 * time.Second,
		SessionSecret:     "session-secret",
		SessionTTL:        time.Hour,
		CSRFSecret:        "csrf-secret",
		GalaxyAPIURL:      api.URL,
		GalaxyAPITimeout:  5 * time.Second,
		StagedBusyTimeout: 30 * time.Second,
	}
	require.NoError(t, cfg.Validate())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := app.Handler(cfg, logger, client, observability.NewMetrics())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: srv.URL, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	res, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(body)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	res, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(body)
}

func (b *browser) token() string {
	b.t.Helper()
	_, body := b.get("/login")
	m := tokenPattern.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "login page carries a csrf token")
	return m[1]
}

func (b *browser) login(password string) *http.Response {
	b.t.Helper()
	res, _ := b.post("/login", url.Values{"csrf_token": {b.token()}, "phone": {"9000000001"}, "password": {password}})
	return res
}

func TestHealthz(t *testing.T) {
	b := newApp(t)
	res, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	b := newApp(t)
	for _, path := range []string{"/", "/admin/events", "/captain/dashboard", "/worker/bookings"} {
		res, _ := b.get(path)
		assert.Equal(t, http.StatusSeeOther, res.StatusCode, path)
		assert.Equal(t, "/login", res.Header.Get("Location"), path)
	}
}

func TestLoginWithoutTokenIsRejected(t *testing.T) {
	b := newApp(t)
	res, _ := b.post("/login", url.Values{"phone": {"9000000001"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLoginFailureShowsMessage(t *testing.T) {
	b := newApp(t, "event:view")
	res, _ := b.post("/login", url.Values{"csrf_token": {b.token()}, "phone": {"9000000001"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLoginLandsOnFirstPermittedPage(t *testing.T) {
	b := newApp(t, "event:view")

	res := b.login("secret")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/events", res.Header.Get("Location"))

	res, body := b.get("/admin/events")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Sharma Wedding")
	assert.Contains(t, body, "Welcome back, Asha Admin")
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))

	res, _ = b.get("/worker/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/events", res.Header.Get("Location"))

	res, _ = b.get("/admin/users")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/events", res.Header.Get("Location"))

	res, body = b.get("/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.Contains(body, `galaxy_backend_requests_total{code="200",op="list_events"}`), body)
}

func TestUnknownPermissionRejectsLoginOutsideProduction(t *testing.T) {
	b := newApp(t, "event:view", "payroll:approve")

	res := b.login("secret")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = b.get("/admin/events")
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	b := newApp(t, "event:view")
	require.Equal(t, http.StatusSeeOther, b.login("secret").StatusCode)

	_, body := b.get("/admin/events")
	m := tokenPattern.FindStringSubmatch(body)
	require.Len(t, m, 2)
	res, _ := b.post("/logout", url.Values{"csrf_token": {m[1]}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	res, _ = b.get("/admin/events")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestStaticAssetsAreCached(t *testing.T) {
	b := newApp(t)
	res, _ := b.get("/static/css/app.css")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "public, max-age=3600", res.Header.Get("Cache-Control"))
}
