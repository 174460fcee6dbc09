package galaxy

import (
	"context"
	"net/http"
	"net/url"
)

// ListPermissions returns the backend permission catalogue.
func (c *Client) ListPermissions(ctx context.Context, creds *Credentials) ([]PermissionInfo, error) {
	var perms []PermissionInfo
	_, err := c.do(ctx, creds, call{op: "list_permissions", method: http.MethodGet, path: "/api/rbac/permissions", out: &perms})
	return perms, err
}

// ListAdmins returns admin accounts with their grants.
func (c *Client) ListAdmins(ctx context.Context, creds *Credentials, search string) ([]AdminUser, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var admins []AdminUser
	_, err := c.do(ctx, creds, call{op: "list_admins", method: http.MethodGet, path: "/api/rbac/admins", query: query, out: &admins})
	return admins, err
}

// UpdateAdminPermissions replaces the grants of an admin.
func (c *Client) UpdateAdminPermissions(ctx context.Context, creds *Credentials, id ID, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	body := map[string][]string{"permissions": perms}
	_, err := c.do(ctx, creds, call{op: "update_admin_permissions", method: http.MethodPut, path: idPath("/api/rbac/admins/%s/permissions", id), body: body})
	return err
}
