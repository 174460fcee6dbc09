// Package roles serves the staged user-role assignment screen.
package roles

import (
	"context"
	"strings"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

// Row is one user and the role being assigned.
type Row struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Schema tracks the role only.
var Schema = staged.Schema[Row]{
	Key:   func(r Row) string { return r.ID },
	Clone: func(r Row) Row { return r },
	Fields: map[string]staged.Field[Row]{
		"role": {
			Get: func(r Row) any { return r.Role },
			Set: func(r *Row, raw string) error {
				role, err := access.ParseRole(raw)
				if err != nil {
					return err
				}
				r.Role = string(role)
				return nil
			},
		},
	},
}

// Backend is the part of the Galaxy API role assignment needs.
type Backend interface {
	ListUsers(ctx context.Context, creds *galaxy.Credentials, filter galaxy.UserFilter) ([]galaxy.User, error)
	UpdateUserRole(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID, role string) error
}

type source struct {
	backend Backend
	creds   *galaxy.Credentials
}

func (s source) Fetch(ctx context.Context, search string) ([]Row, error) {
	users, err := s.backend.ListUsers(ctx, s.creds, galaxy.UserFilter{Search: search})
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{ID: u.ID.String(), Name: u.Name, Phone: u.Phone, Role: strings.ToLower(u.Role)})
	}
	return rows, nil
}

func (s source) Save(ctx context.Context, row Row) error {
	return s.backend.UpdateUserRole(ctx, s.creds, galaxy.ID(row.ID), row.Role)
}

// RoleOption is a role choice.
type RoleOption struct {
	Value string
	Label string
}

// RowView is a staged row prepared for the template.
type RowView struct {
	Row
	OriginalRole string
	Pending      bool
	Confirming   bool
	Busy         bool
}

// Page is the view model of the role screen.
type Page struct {
	Rows    []RowView
	Search  string
	Roles   []RoleOption
	CanEdit bool
	Pending int
}
