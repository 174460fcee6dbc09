package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

// ErrPasswordRequired is returned when creating a user without a password.
var ErrPasswordRequired = errors.New("users: password required")

// Backend is the part of the Galaxy API user management needs.
type Backend interface {
	ListUsers(ctx context.Context, creds *galaxy.Credentials, filter galaxy.UserFilter) ([]galaxy.User, error)
	GetUser(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID) (galaxy.User, error)
	CreateUser(ctx context.Context, creds *galaxy.Credentials, input galaxy.UserInput) (galaxy.User, error)
	UpdateUser(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID, input galaxy.UserInput) (galaxy.User, error)
	DeleteUser(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID) error
}

// Service handles user management against the backend.
type Service struct {
	backend Backend
}

// NewService builds Service instance.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns one page of users ordered by name.
func (s *Service) List(ctx context.Context, creds *galaxy.Credentials, filter galaxy.UserFilter, page int) ([]galaxy.User, shared.Pagination, error) {
	users, err := s.backend.ListUsers(ctx, creds, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	window, pagination := shared.Paginate(users, page, perPage)
	return window, pagination, nil
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, creds *galaxy.Credentials, id string) (galaxy.User, error) {
	return s.backend.GetUser(ctx, creds, galaxy.ID(id))
}

// Create validates the role locally before calling the backend.
func (s *Service) Create(ctx context.Context, creds *galaxy.Credentials, form Form) (galaxy.User, error) {
	if form.Password == "" {
		return galaxy.User{}, ErrPasswordRequired
	}
	if _, err := access.ParseRole(form.Role); err != nil {
		return galaxy.User{}, err
	}
	return s.backend.CreateUser(ctx, creds, form.input())
}

// Update saves an edited user. An empty password leaves it unchanged.
func (s *Service) Update(ctx context.Context, creds *galaxy.Credentials, id string, form Form) (galaxy.User, error) {
	if _, err := access.ParseRole(form.Role); err != nil {
		return galaxy.User{}, err
	}
	return s.backend.UpdateUser(ctx, creds, galaxy.ID(id), form.input())
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, creds *galaxy.Credentials, id string) error {
	if err := s.backend.DeleteUser(ctx, creds, galaxy.ID(id)); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
