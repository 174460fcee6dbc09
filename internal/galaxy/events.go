package galaxy

import (
	"context"
	"net/http"
	"net/url"
)

// DashboardStats loads admin dashboard counters.
func (c *Client) DashboardStats(ctx context.Context, creds *Credentials) (DashboardStats, error) {
	var stats DashboardStats
	_, err := c.do(ctx, creds, call{op: "dashboard_stats", method: http.MethodGet, path: "/api/dashboard/stats", out: &stats})
	return stats, err
}

// ListEvents returns events matching filter.
func (c *Client) ListEvents(ctx context.Context, creds *Credentials, filter EventFilter) ([]Event, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	var events []Event
	_, err := c.do(ctx, creds, call{op: "list_events", method: http.MethodGet, path: "/api/events", query: query, out: &events})
	return events, err
}

// GetEvent loads one event.
func (c *Client) GetEvent(ctx context.Context, creds *Credentials, id ID) (Event, error) {
	var event Event
	_, err := c.do(ctx, creds, call{op: "get_event", method: http.MethodGet, path: idPath("/api/events/%s", id), out: &event})
	return event, err
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, creds *Credentials, input EventInput) (Event, error) {
	var event Event
	_, err := c.do(ctx, creds, call{op: "create_event", method: http.MethodPost, path: "/api/events", body: input, out: &event})
	return event, err
}

// UpdateEvent replaces an event's editable fields.
func (c *Client) UpdateEvent(ctx context.Context, creds *Credentials, id ID, input EventInput) (Event, error) {
	var event Event
	_, err := c.do(ctx, creds, call{op: "update_event", method: http.MethodPut, path: idPath("/api/events/%s", id), body: input, out: &event})
	return event, err
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, creds *Credentials, id ID) error {
	_, err := c.do(ctx, creds, call{op: "delete_event", method: http.MethodDelete, path: idPath("/api/events/%s", id)})
	return err
}
