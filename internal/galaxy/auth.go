package galaxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates with phone and password. The returned jar holds the
// backend's session cookies.
func (c *Client) Login(ctx context.Context, phone, password string) (User, *Credentials, error) {
	creds := NewCredentials(nil)
	var raw json.RawMessage
	_, err := c.do(ctx, creds, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   loginRequest{Phone: phone, Password: password},
		out:    &raw,
	})
	if err != nil {
		return User{}, nil, err
	}
	user, err := decodeUser(raw)
	if err != nil {
		return User{}, nil, fmt.Errorf("galaxy: login: %w", err)
	}
	return user, creds, nil
}

// Logout ends the backend session. It is safe to call repeatedly.
func (c *Client) Logout(ctx context.Context, creds *Credentials) error {
	_, err := c.do(ctx, creds, call{op: "logout", method: http.MethodPost, path: "/api/auth/logout"})
	return err
}

// Me returns the backend's view of the current account.
func (c *Client) Me(ctx context.Context, creds *Credentials) (User, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, creds, call{op: "me", method: http.MethodGet, path: "/api/auth/me", out: &raw}); err != nil {
		return User{}, err
	}
	return decodeUser(raw)
}

// decodeUser accepts a bare user object or one wrapped under "user".
func decodeUser(raw json.RawMessage) (User, error) {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return *wrapped.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
