package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

const (
	// UserKey holds the persisted identity record.
	UserKey = "galaxy_user"
	// BackendKey holds the backend cookie jar.
	BackendKey = "galaxy_backend"
)

// ErrInvalidIdentity is returned when the backend identity cannot be used.
var ErrInvalidIdentity = errors.New("auth: invalid identity")

// SignOuter ends the backend session.
type SignOuter interface {
	Logout(ctx context.Context, creds *galaxy.Credentials) error
}

// StatePurger drops per-session view state.
type StatePurger interface {
	PurgeSession(ctx context.Context, sessionID string) error
}

// record is the persisted form of Identity.
type record struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// Store is the single source of truth for who is logged in.
type Store struct {
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	backend  SignOuter
	purger   StatePurger
	logger   *slog.Logger
	strict   bool
}

// StoreConfig groups Store dependencies.
type StoreConfig struct {
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
	Backend  SignOuter
	Purger   StatePurger
	Logger   *slog.Logger
	// Strict rejects unknown permission slugs instead of dropping them.
	Strict bool
}

// NewStore builds a Store.
func NewStore(cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: cfg.Sessions,
		csrf:     cfg.CSRF,
		backend:  cfg.Backend,
		purger:   cfg.Purger,
		logger:   logger,
		strict:   cfg.Strict,
	}
}

// Initialize rehydrates the identity from the session record. A corrupt
// record is removed and the session proceeds unauthenticated. Loading is
// always false on return.
func (s *Store) Initialize(sess *shared.Session) *Session {
	out := &Session{}
	if sess == nil {
		return out
	}
	raw := sess.Get(UserKey)
	if raw == "" {
		return out
	}
	identity, err := decodeRecord(raw)
	if err != nil {
		s.logger.Debug("discard stored identity", slog.Any("error", err))
		sess.Delete(UserKey)
		sess.Delete(BackendKey)
		return out
	}
	out.User = identity
	out.creds = galaxy.DecodeCredentials(sess.Get(BackendKey), func(encoded string) {
		sess.Set(BackendKey, encoded)
	})
	return out
}

func decodeRecord(raw string) (*Identity, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidIdentity)
	}
	role, err := access.ParseRole(rec.Role)
	if err != nil {
		return nil, err
	}
	perms, _, err := access.ParseSet(rec.Permissions, true)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: rec.ID, Name: rec.Name, Role: role, Permissions: perms}, nil
}

// Login stores the identity returned by a successful authentication. The
// record is written to the session before the in-memory session is built.
func (s *Store) Login(sess *shared.Session, user galaxy.User, creds *galaxy.Credentials) (*Session, error) {
	if sess == nil {
		return nil, errors.New("auth: session missing")
	}
	id := strings.TrimSpace(user.ID.String())
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidIdentity)
	}
	role, err := access.ParseRole(user.Role)
	if err != nil {
		return nil, err
	}
	perms := access.NewSet()
	if role == access.RoleAdmin {
		parsed, unknown, err := access.ParseSet(user.Permissions, s.strict)
		if err != nil {
			return nil, err
		}
		if len(unknown) > 0 {
			s.logger.Warn("dropping unknown permission slugs", slog.String("user", id), slog.Any("slugs", unknown))
		}
		perms = parsed
	}

	rec := record{ID: id, Name: user.Name, Role: string(role)}
	if len(perms) > 0 {
		rec.Permissions = perms.Slugs()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		s.sessions.Renew(sess)
	}
	if s.csrf != nil {
		s.csrf.Rotate(sess)
	}
	sess.Set(UserKey, string(data))
	sess.SetUser(id)
	if creds == nil {
		creds = galaxy.NewCredentials(nil)
	}
	sess.Set(BackendKey, creds.Encode())

	return &Session{
		User:  &Identity{ID: id, Name: user.Name, Role: role, Permissions: perms},
		creds: galaxy.DecodeCredentials(creds.Encode(), func(encoded string) { sess.Set(BackendKey, encoded) }),
	}, nil
}

// Logout signs out of the backend on a best-effort basis and then always
// clears the local session. The caller redirects to the login page.
func (s *Store) Logout(ctx context.Context, sess *shared.Session, current *Session) {
	if s.backend != nil && current.Authenticated() {
		if err := s.backend.Logout(ctx, current.Credentials()); err != nil {
			s.logger.Warn("backend logout failed", slog.Any("error", err))
		}
	}
	s.clear(ctx, sess)
}

// Expire clears the session after the backend reported it invalid.
func (s *Store) Expire(ctx context.Context, sess *shared.Session) {
	s.clear(ctx, sess)
}

func (s *Store) clear(ctx context.Context, sess *shared.Session) {
	if sess == nil {
		return
	}
	if s.purger != nil {
		if err := s.purger.PurgeSession(ctx, sess.ID); err != nil {
			s.logger.Warn("purge view state", slog.Any("error", err))
		}
	}
	sess.Delete(UserKey)
	sess.Delete(BackendKey)
	sess.SetUser("")
	if s.sessions != nil {
		s.sessions.Destroy(sess)
	}
}

// Middleware rehydrates the identity for every request.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := s.Initialize(shared.SessionFromContext(r.Context()))
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), current)))
	})
}
