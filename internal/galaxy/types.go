package galaxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque backend identifier sent either as a JSON string or number.
type ID string

// UnmarshalJSON accepts strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("galaxy: id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// User is an account as returned by the backend.
type User struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// UserInput creates or updates a user.
type UserInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
	IsActive bool   `json:"is_active"`
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Search string
	Role   string
}

// Event is a staffed event.
type Event struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Venue         string `json:"venue"`
	Date          string `json:"date"`
	ReportingTime string `json:"reporting_time"`
	Status        string `json:"status"`
	RequiredStaff int    `json:"required_staff"`
	BookedStaff   int    `json:"booked_staff"`
	CaptainID     ID     `json:"captain_id,omitempty"`
	CaptainName   string `json:"captain_name,omitempty"`
	ExtraAmount   int64  `json:"extra_amount"`
	Description   string `json:"description,omitempty"`
}

// EventInput creates or updates an event.
type EventInput struct {
	Name          string `json:"name"`
	Venue         string `json:"venue"`
	Date          string `json:"date"`
	ReportingTime string `json:"reporting_time"`
	Status        string `json:"status"`
	RequiredStaff int    `json:"required_staff"`
	CaptainID     string `json:"captain_id,omitempty"`
	ExtraAmount   int64  `json:"extra_amount"`
	Description   string `json:"description,omitempty"`
}

// EventFilter narrows ListEvents.
type EventFilter struct {
	Search string
	Status string
}

// Booking is one worker booked on one event, with payout amounts in rupees.
type Booking struct {
	ID          ID     `json:"id"`
	EventID     ID     `json:"event_id"`
	EventName   string `json:"event_name,omitempty"`
	EventDate   string `json:"event_date,omitempty"`
	Venue       string `json:"venue,omitempty"`
	UserID      ID     `json:"user_id"`
	UserName    string `json:"user_name"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	BaseAmount  int64  `json:"base_amount"`
	ExtraAmount int64  `json:"extra_amount"`
	TAAmount    int64  `json:"ta_amount"`
	BonusAmount int64  `json:"bonus_amount"`
	FineAmount  int64  `json:"fine_amount"`
	TotalAmount int64  `json:"total_amount"`
}

// AttendanceUpdate is what an admin commits for one booking.
type AttendanceUpdate struct {
	Status      string `json:"status"`
	TAAmount    int64  `json:"ta_amount"`
	BonusAmount int64  `json:"bonus_amount"`
	FineAmount  int64  `json:"fine_amount"`
}

// Earnings summarises a worker's payouts.
type Earnings struct {
	Total    int64     `json:"total"`
	Bookings []Booking `json:"bookings"`
}

// WageRate is the base pay for a role.
type WageRate struct {
	Role       string `json:"role"`
	BaseAmount int64  `json:"base_amount"`
}

// DashboardStats backs the admin dashboard cards.
type DashboardStats struct {
	TotalEvents    int   `json:"total_events"`
	UpcomingEvents int   `json:"upcoming_events"`
	TotalUsers     int   `json:"total_users"`
	ActiveBookings int   `json:"active_bookings"`
	PendingPayouts int64 `json:"pending_payouts"`
}

// PermissionInfo is one entry of the backend permission catalogue.
type PermissionInfo struct {
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// AdminUser is an admin account and its granted permissions.
type AdminUser struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone,omitempty"`
	Permissions []string `json:"permissions"`
}

// ParseAmount parses a whole-rupee form value.
func ParseAmount(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
