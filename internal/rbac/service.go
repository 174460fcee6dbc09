package rbac

import (
	"context"
	"sort"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// Service builds the permission catalogue.
type Service struct {
	backend Backend
}

// NewService constructs the RBAC service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Catalogue merges the backend's permission list with the slugs this front
// end understands. Known is false for slugs the backend offers that no page
// here checks; Offered is false for known slugs the backend does not list.
func (s *Service) Catalogue(ctx context.Context, creds *galaxy.Credentials) ([]CatalogueEntry, error) {
	infos, err := s.backend.ListPermissions(ctx, creds)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]*CatalogueEntry, len(infos))
	for _, perm := range access.AllPermissions() {
		entries[string(perm)] = &CatalogueEntry{Slug: string(perm), Description: perm.Description(), Known: true}
	}
	for _, info := range infos {
		entry, ok := entries[info.Slug]
		if !ok {
			entry = &CatalogueEntry{Slug: info.Slug}
			entries[info.Slug] = entry
		}
		entry.Offered = true
		if info.Description != "" {
			entry.Description = info.Description
		}
	}
	out := make([]CatalogueEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}
