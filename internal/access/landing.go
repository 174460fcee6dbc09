package access

// AdminProfilePath needs no permission and is the admin fallback landing page.
const AdminProfilePath = "/admin/profile"

// LoginPath is the login entry point.
const LoginPath = "/login"

type landingRule struct {
	perm Permission
	path string
}

// adminLandings is checked in order; the first held permission wins.
var adminLandings = []landingRule{
	{PermDashboardView, "/admin/dashboard"},
	{PermEventView, "/admin/events"},
	{PermAttendanceView, "/admin/events"},
	{PermUserView, "/admin/users"},
	{PermWageView, "/admin/wages"},
	{PermRBACView, "/admin/rbac"},
}

// Landing resolves the first page a role may open. Login redirects and guard
// redirects both call it so they never diverge.
func Landing(role Role, has func(Permission) bool) string {
	if role == RoleAdmin {
		for _, rule := range adminLandings {
			if has != nil && has(rule.perm) {
				return rule.path
			}
		}
		return AdminProfilePath
	}
	if info, ok := roles[role]; ok {
		return info.landing
	}
	return LoginPath
}
