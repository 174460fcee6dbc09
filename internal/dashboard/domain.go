// Package dashboard serves the landing dashboards of each shell and the
// profile page.
package dashboard

import (
	"context"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// upcomingLimit caps the event lists shown on dashboards.
const upcomingLimit = 5

// Backend is the part of the Galaxy API the dashboards need.
type Backend interface {
	DashboardStats(ctx context.Context, creds *galaxy.Credentials) (galaxy.DashboardStats, error)
	ListEvents(ctx context.Context, creds *galaxy.Credentials, filter galaxy.EventFilter) ([]galaxy.Event, error)
	CaptainEvents(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Event, error)
	OpenEvents(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Event, error)
	MyBookings(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Booking, error)
	MyWages(ctx context.Context, creds *galaxy.Credentials) (galaxy.Earnings, error)
	Me(ctx context.Context, creds *galaxy.Credentials) (galaxy.User, error)
}

// AdminPage is the view model of the admin dashboard.
type AdminPage struct {
	Stats    galaxy.DashboardStats
	Upcoming []galaxy.Event
	CanEvent bool
}

// CaptainPage is the view model of the captain dashboard.
type CaptainPage struct {
	Events   []galaxy.Event
	Assigned int
	Earnings int64
}

// WorkerPage is the view model of the worker dashboard.
type WorkerPage struct {
	OpenEvents []galaxy.Event
	Upcoming   []galaxy.Booking
	Earnings   int64
	Completed  int
}

// ProfilePage is the view model of the profile page.
type ProfilePage struct {
	User        galaxy.User
	RoleLabel   string
	Permissions []PermissionLine
}

// PermissionLine is one granted permission on an admin profile.
type PermissionLine struct {
	Slug        string
	Description string
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func profileFrom(user galaxy.User) ProfilePage {
	out := ProfilePage{User: user, RoleLabel: user.Role}
	role, err := access.ParseRole(user.Role)
	if err != nil {
		return out
	}
	out.RoleLabel = role.Label()
	if role != access.RoleAdmin {
		return out
	}
	set, _, _ := access.ParseSet(user.Permissions, false)
	for _, slug := range set.Slugs() {
		out.Permissions = append(out.Permissions, PermissionLine{Slug: slug, Description: access.Permission(slug).Description()})
	}
	return out
}
