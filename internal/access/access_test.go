package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type principal struct {
	role  Role
	perms Set
}

func (p principal) HasPermission(perm Permission) bool { return p.perms.Has(perm) }
func (p principal) HasAnyRole(roles ...Role) bool     { return HasAnyRole(p.role, roles...) }

func TestSetHasIsLiteral(t *testing.T) {
	set := NewSet(PermEventEdit)

	assert.True(t, set.Has(PermEventEdit))
	assert.False(t, set.Has(PermEventView), "edit must not imply view")
	assert.False(t, set.Has(Permission("event:*")))

	var empty Set
	assert.False(t, empty.Has(PermEventView))
}

func TestParseSet(t *testing.T) {
	set, unknown, err := ParseSet([]string{"event:view", "event:fly"}, false)
	require.NoError(t, err)
	assert.True(t, set.Has(PermEventView))
	assert.Equal(t, []string{"event:fly"}, unknown)

	_, _, err = ParseSet([]string{"event:view", "event:fly"}, true)
	assert.ErrorIs(t, err, ErrUnknownPermission)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Main_Boy ")
	require.NoError(t, err)
	assert.Equal(t, RoleMainBoy, role)
	assert.Equal(t, ShellWorker, role.Shell())

	_, err = ParseRole("manager")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestCanAccessIsOr(t *testing.T) {
	captain := principal{role: RoleCaptain, perms: NewSet()}
	admin := principal{role: RoleAdmin, perms: NewSet(PermEventView)}

	assert.True(t, CanAccess(captain, PermEventView, RoleCaptain), "role alone grants")
	assert.True(t, CanAccess(admin, PermEventView, RoleCaptain), "permission alone grants")
	assert.False(t, CanAccess(captain, PermEventView, RoleAdmin))
	assert.False(t, CanAccess(nil, PermEventView, RoleAdmin))
}

func TestLandingFirstHeldPermissionWins(t *testing.T) {
	cases := []struct {
		name  string
		perms Set
		want  string
	}{
		{"dashboard first", NewSet(PermEventView, PermDashboardView), "/admin/dashboard"},
		{"events when no dashboard", NewSet(PermEventView), "/admin/events"},
		{"users", NewSet(PermUserView, PermWageView), "/admin/users"},
		{"rbac only", NewSet(PermRBACView), "/admin/rbac"},
		{"nothing", NewSet(), AdminProfilePath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Landing(RoleAdmin, tc.perms.Has))
		})
	}
}

func TestLandingIgnoresPermissionsForNonAdmins(t *testing.T) {
	none := func(Permission) bool { return false }
	assert.Equal(t, "/captain/dashboard", Landing(RoleCaptain, none))
	assert.Equal(t, "/captain/dashboard", Landing(RoleSubCaptain, nil))
	assert.Equal(t, "/worker/dashboard", Landing(RoleMainBoy, none))
	assert.Equal(t, "/worker/dashboard", Landing(RoleJuniorBoy, none))
	assert.Equal(t, LoginPath, Landing(Role("ghost"), none))
}

func TestHasAny(t *testing.T) {
	p := principal{role: RoleAdmin, perms: NewSet(PermAttendanceView)}

	assert.True(t, HasAny(p, PermEventView, PermAttendanceView))
	assert.False(t, HasAny(p, PermEventView))
	assert.False(t, HasAny(p))
	assert.False(t, HasAny(nil, PermEventView))
}
