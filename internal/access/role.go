package access

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role string is outside the closed set.
var ErrUnknownRole = errors.New("access: unknown role")

// Role is a job function that decides which shell a session uses.
type Role string

// Known roles.
const (
	RoleAdmin      Role = "admin"
	RoleCaptain    Role = "captain"
	RoleSubCaptain Role = "sub_captain"
	RoleMainBoy    Role = "main_boy"
	RoleJuniorBoy  Role = "junior_boy"
)

// Shell identifies one of the role-scoped layouts.
type Shell string

// Shell kinds.
const (
	ShellAdmin   Shell = "admin"
	ShellCaptain Shell = "captain"
	ShellWorker  Shell = "worker"
)

type roleInfo struct {
	label   string
	shell   Shell
	landing string
}

// roles is the single table mapping each role to its shell and default landing page.
// Admin landing pages depend on permissions and are resolved by Landing.
var roles = map[Role]roleInfo{
	RoleAdmin:      {label: "Admin", shell: ShellAdmin, landing: AdminProfilePath},
	RoleCaptain:    {label: "Captain", shell: ShellCaptain, landing: "/captain/dashboard"},
	RoleSubCaptain: {label: "Sub Captain", shell: ShellCaptain, landing: "/captain/dashboard"},
	RoleMainBoy:    {label: "Main Boy", shell: ShellWorker, landing: "/worker/dashboard"},
	RoleJuniorBoy:  {label: "Junior Boy", shell: ShellWorker, landing: "/worker/dashboard"},
}

// AllRoles lists roles in display order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleCaptain, RoleSubCaptain, RoleMainBoy, RoleJuniorBoy}
}

// WorkerRoles lists roles that book events and earn wages.
func WorkerRoles() []Role {
	return []Role{RoleCaptain, RoleSubCaptain, RoleMainBoy, RoleJuniorBoy}
}

// ParseRole validates a role string from the backend or a form.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := roles[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Valid reports whether r belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// Label returns the human readable role name.
func (r Role) Label() string {
	if info, ok := roles[r]; ok {
		return info.label
	}
	return string(r)
}

// Shell returns the layout the role is served with.
func (r Role) Shell() Shell {
	return roles[r].shell
}

// HasAnyRole reports whether role is one of allowed.
func HasAnyRole(role Role, allowed ...Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

// ShellRoles returns the roles served by a shell.
func ShellRoles(shell Shell) []Role {
	var out []Role
	for _, role := range AllRoles() {
		if roles[role].shell == shell {
			out = append(out, role)
		}
	}
	return out
}
