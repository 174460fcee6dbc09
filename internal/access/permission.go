package access

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPermission is returned for slugs outside the closed set.
var ErrUnknownPermission = errors.New("access: unknown permission")

// Permission is a capability slug granted independently of role.
type Permission string

// Known permission slugs.
const (
	PermDashboardView  Permission = "dashboard:view"
	PermEventView      Permission = "event:view"
	PermEventCreate    Permission = "event:create"
	PermEventEdit      Permission = "event:edit"
	PermEventDelete    Permission = "event:delete"
	PermAttendanceView Permission = "attendance:view"
	PermAttendanceEdit Permission = "attendance:edit"
	PermUserView       Permission = "user:view"
	PermUserCreate     Permission = "user:create"
	PermUserEdit       Permission = "user:edit"
	PermUserDelete     Permission = "user:delete"
	PermWageView       Permission = "wage:view"
	PermWageEdit       Permission = "wage:edit"
	PermRBACView       Permission = "rbac:view"
	PermRBACEdit       Permission = "rbac:edit"
)

var known = map[Permission]string{
	PermDashboardView:  "View dashboard",
	PermEventView:      "View events",
	PermEventCreate:    "Create events",
	PermEventEdit:      "Edit events",
	PermEventDelete:    "Delete events",
	PermAttendanceView: "View attendance",
	PermAttendanceEdit: "Edit attendance and payouts",
	PermUserView:       "View users",
	PermUserCreate:     "Create users",
	PermUserEdit:       "Edit users",
	PermUserDelete:     "Delete users",
	PermWageView:       "View wages",
	PermWageEdit:       "Edit wages",
	PermRBACView:       "View team access",
	PermRBACEdit:       "Edit team access",
}

// AllPermissions returns every known slug sorted.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(known))
	for p := range known {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsePermission validates a slug.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(strings.TrimSpace(raw))
	if _, ok := known[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, raw)
	}
	return p, nil
}

// Description returns the catalogue text for the slug.
func (p Permission) Description() string {
	return known[p]
}

// Set is an exact-membership collection of permissions. The zero value is empty and usable.
type Set map[Permission]struct{}

// NewSet builds a set from permissions.
func NewSet(perms ...Permission) Set {
	set := make(Set, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// ParseSet validates slugs. With strict unset, unknown slugs are returned separately instead of failing.
func ParseSet(slugs []string, strict bool) (Set, []string, error) {
	set := make(Set, len(slugs))
	var unknown []string
	for _, slug := range slugs {
		p, err := ParsePermission(slug)
		if err != nil {
			if strict {
				return nil, nil, err
			}
			unknown = append(unknown, slug)
			continue
		}
		set[p] = struct{}{}
	}
	return set, unknown, nil
}

// Has is a literal membership test. No slug implies another.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slugs returns sorted slug strings.
func (s Set) Slugs() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}
