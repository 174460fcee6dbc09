package galaxy

import (
	"context"
	"net/http"
	"net/url"
)

// ListEventBookings returns the bookings of an event, optionally filtered by worker name or phone.
func (c *Client) ListEventBookings(ctx context.Context, creds *Credentials, eventID ID, search string) ([]Booking, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var bookings []Booking
	_, err := c.do(ctx, creds, call{op: "list_event_bookings", method: http.MethodGet, path: idPath("/api/events/%s/bookings", eventID), query: query, out: &bookings})
	return bookings, err
}

// UpdateAttendance commits status and payout adjustments for one booking.
func (c *Client) UpdateAttendance(ctx context.Context, creds *Credentials, bookingID ID, update AttendanceUpdate) error {
	_, err := c.do(ctx, creds, call{op: "update_attendance", method: http.MethodPut, path: idPath("/api/bookings/%s/attendance", bookingID), body: update})
	return err
}

// CaptainEvents lists events led by the current captain.
func (c *Client) CaptainEvents(ctx context.Context, creds *Credentials) ([]Event, error) {
	var events []Event
	_, err := c.do(ctx, creds, call{op: "captain_events", method: http.MethodGet, path: "/api/captain/events", out: &events})
	return events, err
}

// CaptainBookings lists the crew booked on a captain's event.
func (c *Client) CaptainBookings(ctx context.Context, creds *Credentials, eventID ID, search string) ([]Booking, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var bookings []Booking
	_, err := c.do(ctx, creds, call{op: "captain_bookings", method: http.MethodGet, path: idPath("/api/captain/events/%s/bookings", eventID), query: query, out: &bookings})
	return bookings, err
}

// CaptainMarkAttendance sets the attendance status of one crew member.
func (c *Client) CaptainMarkAttendance(ctx context.Context, creds *Credentials, bookingID ID, status string) error {
	body := map[string]string{"status": status}
	_, err := c.do(ctx, creds, call{op: "captain_mark_attendance", method: http.MethodPut, path: idPath("/api/captain/bookings/%s/status", bookingID), body: body})
	return err
}

// OpenEvents lists events a worker can still book.
func (c *Client) OpenEvents(ctx context.Context, creds *Credentials) ([]Event, error) {
	var events []Event
	_, err := c.do(ctx, creds, call{op: "open_events", method: http.MethodGet, path: "/api/worker/events", out: &events})
	return events, err
}

// BookEvent books the current worker on an event.
func (c *Client) BookEvent(ctx context.Context, creds *Credentials, eventID ID) error {
	_, err := c.do(ctx, creds, call{op: "book_event", method: http.MethodPost, path: idPath("/api/worker/events/%s/book", eventID)})
	return err
}

// MyBookings lists the current worker's bookings.
func (c *Client) MyBookings(ctx context.Context, creds *Credentials) ([]Booking, error) {
	var bookings []Booking
	_, err := c.do(ctx, creds, call{op: "my_bookings", method: http.MethodGet, path: "/api/worker/bookings", out: &bookings})
	return bookings, err
}

// CancelBooking withdraws the current worker from a booking.
func (c *Client) CancelBooking(ctx context.Context, creds *Credentials, bookingID ID) error {
	_, err := c.do(ctx, creds, call{op: "cancel_booking", method: http.MethodDelete, path: idPath("/api/worker/bookings/%s", bookingID)})
	return err
}

// MyWages returns the current worker's earnings.
func (c *Client) MyWages(ctx context.Context, creds *Credentials) (Earnings, error) {
	var earnings Earnings
	_, err := c.do(ctx, creds, call{op: "my_wages", method: http.MethodGet, path: "/api/worker/wages", out: &earnings})
	return earnings, err
}
