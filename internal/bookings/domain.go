// Package bookings lets workers find open events and manage their bookings.
package bookings

import (
	"context"

	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// Backend is the part of the Galaxy API the worker booking pages need.
type Backend interface {
	OpenEvents(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Event, error)
	BookEvent(ctx context.Context, creds *galaxy.Credentials, eventID galaxy.ID) error
	MyBookings(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Booking, error)
	CancelBooking(ctx context.Context, creds *galaxy.Credentials, bookingID galaxy.ID) error
}

// OpenEvent is an event a worker may book, marked when already booked.
type OpenEvent struct {
	galaxy.Event
	Booked bool
	Full   bool
}

// EventsPage is the view model of the worker open events screen.
type EventsPage struct {
	Events []OpenEvent
}

// BookingsPage is the view model of the worker bookings screen.
type BookingsPage struct {
	Upcoming []galaxy.Booking
	Past     []galaxy.Booking
}

// Cancellable reports whether a worker may still withdraw from b.
func Cancellable(b galaxy.Booking) bool {
	return b.Status == "booked"
}

// markBooked flags open events the worker already holds an active booking on.
func markBooked(events []galaxy.Event, mine []galaxy.Booking) []OpenEvent {
	active := make(map[galaxy.ID]bool, len(mine))
	for _, b := range mine {
		if b.Status != "cancelled" {
			active[b.EventID] = true
		}
	}
	out := make([]OpenEvent, 0, len(events))
	for _, e := range events {
		out = append(out, OpenEvent{
			Event:  e,
			Booked: active[e.ID],
			Full:   e.RequiredStaff > 0 && e.BookedStaff >= e.RequiredStaff,
		})
	}
	return out
}

// splitBookings separates bookings still to be worked from finished ones.
func splitBookings(all []galaxy.Booking) BookingsPage {
	var out BookingsPage
	for _, b := range all {
		if Cancellable(b) {
			out.Upcoming = append(out.Upcoming, b)
			continue
		}
		out.Past = append(out.Past, b)
	}
	return out
}
