// Package webtest runs handlers behind the real session, CSRF and auth
// middleware against an in-memory Redis, and acts as a cookie-keeping browser.
package webtest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/guard"
	"github.com/galaxy-staffing/galaxy-web/internal/page"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
	_ "github.com/galaxy-staffing/galaxy-web/testing"
)

const (
	// SessionCookie is the cookie name the harness uses.
	SessionCookie = "galaxy_session"
	// BusyTimeout is the staged busy timeout handlers should be built with.
	BusyTimeout = 30 * time.Second

	signInPath = "/__webtest/signin"
	tokenPath  = "/__webtest/csrf"
)

// Harness bundles the request-scoped infrastructure every handler needs.
type Harness struct {
	t testing.TB

	Redis     *miniredis.Miniredis
	Client    *redis.Client
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	States    *staged.RedisStore
	Store     *auth.Store
	Templates *view.Engine
	Page      *page.Responder
	Guard     *guard.Guard
	Logger    *slog.Logger

	router  chi.Router
	cookies map[string]*http.Cookie
	pending galaxy.User
}

// New builds a harness. backend receives backend logouts and may be nil.
func New(t testing.TB, backend auth.SignOuter) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := shared.NewSessionManager(client, SessionCookie, "test-session-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("test-csrf-secret")
	states := staged.NewRedisStore(client, time.Hour)
	store := auth.NewStore(auth.StoreConfig{
		Sessions: sessions,
		CSRF:     csrf,
		Backend:  backend,
		Purger:   states,
		Logger:   logger,
		Strict:   true,
	})

	h := &Harness{
		t:         t,
		Redis:     mr,
		Client:    client,
		Sessions:  sessions,
		CSRF:      csrf,
		States:    states,
		Store:     store,
		Templates: templates,
		Page:      page.NewResponder(logger, templates, csrf, store),
		Guard:     guard.New(logger, templates),
		Logger:    logger,
		cookies:   make(map[string]*http.Cookie),
	}

	r := chi.NewRouter()
	r.Use(shared.SessionMiddleware(sessions, logger), shared.CSRFMiddleware(csrf, logger), store.Middleware)
	r.Get(signInPath, func(w http.ResponseWriter, r *http.Request) {
		creds := galaxy.NewCredentials([]*http.Cookie{{Name: "access_token", Value: "test-token"}})
		if _, err := store.Login(shared.SessionFromContext(r.Context()), h.pending, creds); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		token, _ := csrf.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		_, _ = io.WriteString(w, token)
	})
	h.router = r
	return h
}

// Router exposes the root router for mounting handlers.
func (h *Harness) Router() chi.Router {
	return h.router
}

// Shell mounts fn under prefix behind the role guard of the shell, the way
// the application router does.
func (h *Harness) Shell(prefix string, kind access.Shell, fn func(chi.Router)) {
	h.router.Route(prefix, func(r chi.Router) {
		r.Use(h.Guard.RequireRoles(access.ShellRoles(kind)...))
		fn(r)
	})
}

// SignIn logs the browser in as user.
func (h *Harness) SignIn(user galaxy.User) {
	h.t.Helper()
	h.pending = user
	rr := h.Get(signInPath)
	require.Equal(h.t, http.StatusNoContent, rr.Code, rr.Body.String())
}

// Admin signs in an admin holding perms.
func (h *Harness) Admin(perms ...access.Permission) {
	h.t.Helper()
	slugs := make([]string, 0, len(perms))
	for _, p := range perms {
		slugs = append(slugs, string(p))
	}
	h.SignIn(galaxy.User{ID: "1", Name: "Asha Admin", Role: string(access.RoleAdmin), Permissions: slugs})
}

// As signs in a non-admin with role.
func (h *Harness) As(role access.Role) {
	h.t.Helper()
	h.SignIn(galaxy.User{ID: "7", Name: "Ravi " + role.Label(), Role: string(role)})
}

// Get performs a GET with the browser cookies.
func (h *Harness) Get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// Post submits form with a valid CSRF token.
func (h *Harness) Post(path string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(shared.CSRFFormField, h.token())
	return h.PostRaw(path, form)
}

// PostRaw submits form as is.
func (h *Harness) PostRaw(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

// Follow issues a GET to the Location of a redirect.
func (h *Harness) Follow(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	h.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(h.t, location, "response is not a redirect")
	return h.Get(location)
}

// SignedIn reports whether the browser still carries an authenticated session.
func (h *Harness) SignedIn() bool {
	cookie, ok := h.cookies[SessionCookie]
	if !ok {
		return false
	}
	raw, err := h.Redis.Get("galaxy:session:" + cookie.Value)
	return err == nil && strings.Contains(raw, auth.UserKey)
}

func (h *Harness) token() string {
	h.t.Helper()
	rr := h.Get(tokenPath)
	require.Equal(h.t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func (h *Harness) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = c
	}
	return rr
}
