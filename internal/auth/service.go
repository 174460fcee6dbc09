package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// ErrInvalidCredentials indicates the backend rejected the phone/password pair.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Backend is the part of the Galaxy API the auth flow needs.
type Backend interface {
	Login(ctx context.Context, phone, password string) (galaxy.User, *galaxy.Credentials, error)
	Logout(ctx context.Context, creds *galaxy.Credentials) error
}

// Service wraps authentication against the backend.
type Service struct {
	backend Backend
}

// NewService constructs a new Service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Authenticate exchanges credentials for an identity. A 400/401 from the
// backend becomes ErrInvalidCredentials unless it carries its own message.
func (s *Service) Authenticate(ctx context.Context, phone, password string) (galaxy.User, *galaxy.Credentials, error) {
	user, creds, err := s.backend.Login(ctx, phone, password)
	if err != nil {
		var apiErr *galaxy.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "" &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			return galaxy.User{}, nil, ErrInvalidCredentials
		}
		return galaxy.User{}, nil, err
	}
	return user, creds, nil
}
