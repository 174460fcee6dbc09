package galaxy

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns accounts matching filter.
func (c *Client) ListUsers(ctx context.Context, creds *Credentials, filter UserFilter) ([]User, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Role != "" {
		query.Set("role", filter.Role)
	}
	var users []User
	_, err := c.do(ctx, creds, call{op: "list_users", method: http.MethodGet, path: "/api/users", query: query, out: &users})
	return users, err
}

// GetUser loads one account.
func (c *Client) GetUser(ctx context.Context, creds *Credentials, id ID) (User, error) {
	var user User
	_, err := c.do(ctx, creds, call{op: "get_user", method: http.MethodGet, path: idPath("/api/users/%s", id), out: &user})
	return user, err
}

// CreateUser registers an account.
func (c *Client) CreateUser(ctx context.Context, creds *Credentials, input UserInput) (User, error) {
	var user User
	_, err := c.do(ctx, creds, call{op: "create_user", method: http.MethodPost, path: "/api/users", body: input, out: &user})
	return user, err
}

// UpdateUser edits an account. An empty password leaves it unchanged.
func (c *Client) UpdateUser(ctx context.Context, creds *Credentials, id ID, input UserInput) (User, error) {
	var user User
	_, err := c.do(ctx, creds, call{op: "update_user", method: http.MethodPut, path: idPath("/api/users/%s", id), body: input, out: &user})
	return user, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, creds *Credentials, id ID) error {
	_, err := c.do(ctx, creds, call{op: "delete_user", method: http.MethodDelete, path: idPath("/api/users/%s", id)})
	return err
}

// UpdateUserRole changes the role of an account.
func (c *Client) UpdateUserRole(ctx context.Context, creds *Credentials, id ID, role string) error {
	body := map[string]string{"role": role}
	_, err := c.do(ctx, creds, call{op: "update_user_role", method: http.MethodPut, path: idPath("/api/users/%s/role", id), body: body})
	return err
}
