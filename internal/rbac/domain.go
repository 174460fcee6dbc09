// Package rbac serves the permission catalogue and the staged per-admin
// permission editor.
package rbac

import (
	"context"
	"sort"
	"strings"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

// AdminRow is one admin account and the permissions being granted.
// Retained holds granted slugs this front end does not know; they are
// never edited here and are sent back unchanged on save.
type AdminRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Permissions []string `json:"permissions"`
	Retained    []string `json:"retained,omitempty"`
}

// Grants is the full slug list to store: edited slugs plus retained ones.
func (r AdminRow) Grants() []string {
	out := make([]string, 0, len(r.Permissions)+len(r.Retained))
	out = append(out, r.Permissions...)
	out = append(out, r.Retained...)
	sort.Strings(out)
	return out
}

// Has reports whether the row grants slug.
func (r AdminRow) Has(slug string) bool {
	for _, p := range r.Permissions {
		if p == slug {
			return true
		}
	}
	return false
}

// parsePermissions reads a comma separated slug list. Unknown slugs fail.
func parsePermissions(raw string) ([]string, error) {
	var slugs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			slugs = append(slugs, part)
		}
	}
	set, _, err := access.ParseSet(slugs, true)
	if err != nil {
		return nil, err
	}
	return set.Slugs(), nil
}

// Schema tracks the permission list.
var Schema = staged.Schema[AdminRow]{
	Key: func(r AdminRow) string { return r.ID },
	Fields: map[string]staged.Field[AdminRow]{
		"permissions": {
			Get: func(r AdminRow) any { return r.Permissions },
			Set: func(r *AdminRow, raw string) error {
				perms, err := parsePermissions(raw)
				if err != nil {
					return err
				}
				r.Permissions = perms
				return nil
			},
		},
	},
}

// Backend is the part of the Galaxy API RBAC management needs.
type Backend interface {
	ListPermissions(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.PermissionInfo, error)
	ListAdmins(ctx context.Context, creds *galaxy.Credentials, search string) ([]galaxy.AdminUser, error)
	UpdateAdminPermissions(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID, perms []string) error
}

type adminSource struct {
	backend Backend
	creds   *galaxy.Credentials
}

// Fetch splits each admin's slugs into editable known ones and retained
// unknown ones, so the diff compares like with like.
func (s adminSource) Fetch(ctx context.Context, search string) ([]AdminRow, error) {
	admins, err := s.backend.ListAdmins(ctx, s.creds, search)
	if err != nil {
		return nil, err
	}
	rows := make([]AdminRow, 0, len(admins))
	for _, a := range admins {
		set, unknown, _ := access.ParseSet(a.Permissions, false)
		sort.Strings(unknown)
		rows = append(rows, AdminRow{ID: a.ID.String(), Name: a.Name, Phone: a.Phone, Permissions: set.Slugs(), Retained: unknown})
	}
	sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	return rows, nil
}

func (s adminSource) Save(ctx context.Context, row AdminRow) error {
	return s.backend.UpdateAdminPermissions(ctx, s.creds, galaxy.ID(row.ID), row.Grants())
}

// CatalogueEntry is one permission shown in the catalogue.
type CatalogueEntry struct {
	Slug        string
	Description string
	Known       bool
	Offered     bool
}

// AdminView is a staged admin row prepared for the template.
type AdminView struct {
	AdminRow
	Original   []string
	Pending    bool
	Confirming bool
	Busy       bool
	Self       bool
}

// Page is the view model of the RBAC screen.
type Page struct {
	Catalogue []CatalogueEntry
	Admins    []AdminView
	Search    string
	CanEdit   bool
	Pending   int
}
