package access

// Principal is anything that can answer authorization questions about itself.
type Principal interface {
	HasPermission(p Permission) bool
	HasAnyRole(roles ...Role) bool
}

// CanAccess grants access when the principal holds perm OR has one of roles.
// Either condition alone is sufficient.
func CanAccess(p Principal, perm Permission, roles ...Role) bool {
	if p == nil {
		return false
	}
	if perm != "" && p.HasPermission(perm) {
		return true
	}
	return len(roles) > 0 && p.HasAnyRole(roles...)
}

// HasAny reports whether p holds at least one of perms.
func HasAny(p Principal, perms ...Permission) bool {
	if p == nil {
		return false
	}
	for _, perm := range perms {
		if p.HasPermission(perm) {
			return true
		}
	}
	return false
}
