package auth

import (
	"context"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// Identity is the authenticated principal.
type Identity struct {
	ID          string
	Name        string
	Role        access.Role
	Permissions access.Set
}

// Session wraps the identity with request-lifetime state. Only Store builds one.
type Session struct {
	User    *Identity
	Loading bool

	creds *galaxy.Credentials
}

// Authenticated reports whether an identity is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// HasPermission is false when unauthenticated.
func (s *Session) HasPermission(p access.Permission) bool {
	if !s.Authenticated() {
		return false
	}
	return s.User.Permissions.Has(p)
}

// HasAnyRole reports whether the identity's role is one of roles.
func (s *Session) HasAnyRole(roles ...access.Role) bool {
	if !s.Authenticated() {
		return false
	}
	return access.HasAnyRole(s.User.Role, roles...)
}

// Landing returns the identity's role-appropriate landing page.
func (s *Session) Landing() string {
	if !s.Authenticated() {
		return access.LoginPath
	}
	return access.Landing(s.User.Role, s.HasPermission)
}

// Credentials returns the backend cookie jar of the session.
func (s *Session) Credentials() *galaxy.Credentials {
	if s == nil {
		return nil
	}
	return s.creds
}

var _ access.Principal = (*Session)(nil)

type sessionKey struct{}

// WithSession stores the auth session in ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// FromContext returns the auth session, or nil while it is still being initialised.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
