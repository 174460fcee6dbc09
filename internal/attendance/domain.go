// Package attendance serves the staged attendance and payout screens of an
// event for admins and captains.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

// Booking statuses.
const (
	StatusBooked    = "booked"
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusCancelled = "cancelled"
)

// Statuses lists the statuses an admin may set.
var Statuses = []string{StatusBooked, StatusPresent, StatusAbsent, StatusCancelled}

// CaptainStatuses lists the statuses a captain may set.
var CaptainStatuses = []string{StatusBooked, StatusPresent, StatusAbsent}

// MaxAdjustment caps TA, bonus and fine so a row total cannot overflow.
const MaxAdjustment = 10_000_000

var (
	errUnknownStatus = errors.New("unknown status")
	errAmountRange   = fmt.Errorf("amount must be between 0 and %d", MaxAdjustment)
)

var (
	validate       = validator.New()
	adjustmentRule = fmt.Sprintf("gte=0,lte=%d", MaxAdjustment)
)

// Row is one booking on the attendance sheet. Amounts are whole rupees.
type Row struct {
	BookingID   string `json:"booking_id"`
	WorkerName  string `json:"worker_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	BaseAmount  int64  `json:"base_amount"`
	ExtraAmount int64  `json:"extra_amount"`
	TAAmount    int64  `json:"ta_amount"`
	BonusAmount int64  `json:"bonus_amount"`
	FineAmount  int64  `json:"fine_amount"`
}

// Total is recomputed from the row values on every call.
func (r Row) Total() int64 {
	return r.BaseAmount + r.ExtraAmount + r.TAAmount + r.BonusAmount - r.FineAmount
}

func rowFromBooking(b galaxy.Booking) Row {
	return Row{
		BookingID:   b.ID.String(),
		WorkerName:  b.UserName,
		Phone:       b.Phone,
		Role:        b.Role,
		Status:      b.Status,
		BaseAmount:  b.BaseAmount,
		ExtraAmount: b.ExtraAmount,
		TAAmount:    b.TAAmount,
		BonusAmount: b.BonusAmount,
		FineAmount:  b.FineAmount,
	}
}

func statusField(allowed []string) staged.Field[Row] {
	return staged.Field[Row]{
		Get: func(r Row) any { return r.Status },
		Set: func(r *Row, raw string) error {
			for _, s := range allowed {
				if s == raw {
					r.Status = raw
					return nil
				}
			}
			return fmt.Errorf("%w: %q", errUnknownStatus, raw)
		},
	}
}

func amountField(get func(Row) int64, set func(*Row, int64)) staged.Field[Row] {
	return staged.Field[Row]{
		Get: func(r Row) any { return get(r) },
		Set: func(r *Row, raw string) error {
			v, err := galaxy.ParseAmount(raw)
			if err != nil {
				return err
			}
			if err := validate.Var(v, adjustmentRule); err != nil {
				return errAmountRange
			}
			set(r, v)
			return nil
		},
	}
}

func clone(r Row) Row { return r }

func key(r Row) string { return r.BookingID }

// AdminSchema tracks status and the adjustable payout amounts.
var AdminSchema = staged.Schema[Row]{
	Key:   key,
	Clone: clone,
	Fields: map[string]staged.Field[Row]{
		"status":       statusField(Statuses),
		"ta_amount":    amountField(func(r Row) int64 { return r.TAAmount }, func(r *Row, v int64) { r.TAAmount = v }),
		"bonus_amount": amountField(func(r Row) int64 { return r.BonusAmount }, func(r *Row, v int64) { r.BonusAmount = v }),
		"fine_amount":  amountField(func(r Row) int64 { return r.FineAmount }, func(r *Row, v int64) { r.FineAmount = v }),
	},
}

// CaptainSchema tracks status only.
var CaptainSchema = staged.Schema[Row]{
	Key:   key,
	Clone: clone,
	Fields: map[string]staged.Field[Row]{
		"status": statusField(CaptainStatuses),
	},
}

// Backend is the part of the Galaxy API attendance needs.
type Backend interface {
	GetEvent(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID) (galaxy.Event, error)
	ListEventBookings(ctx context.Context, creds *galaxy.Credentials, eventID galaxy.ID, search string) ([]galaxy.Booking, error)
	UpdateAttendance(ctx context.Context, creds *galaxy.Credentials, bookingID galaxy.ID, update galaxy.AttendanceUpdate) error
	CaptainEvents(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Event, error)
	CaptainBookings(ctx context.Context, creds *galaxy.Credentials, eventID galaxy.ID, search string) ([]galaxy.Booking, error)
	CaptainMarkAttendance(ctx context.Context, creds *galaxy.Credentials, bookingID galaxy.ID, status string) error
}

type adminSource struct {
	backend Backend
	creds   *galaxy.Credentials
	eventID galaxy.ID
}

func (s adminSource) Fetch(ctx context.Context, search string) ([]Row, error) {
	bookings, err := s.backend.ListEventBookings(ctx, s.creds, s.eventID, search)
	if err != nil {
		return nil, err
	}
	return rowsFromBookings(bookings), nil
}

func (s adminSource) Save(ctx context.Context, row Row) error {
	return s.backend.UpdateAttendance(ctx, s.creds, galaxy.ID(row.BookingID), galaxy.AttendanceUpdate{
		Status:      row.Status,
		TAAmount:    row.TAAmount,
		BonusAmount: row.BonusAmount,
		FineAmount:  row.FineAmount,
	})
}

type captainSource struct {
	backend Backend
	creds   *galaxy.Credentials
	eventID galaxy.ID
}

func (s captainSource) Fetch(ctx context.Context, search string) ([]Row, error) {
	bookings, err := s.backend.CaptainBookings(ctx, s.creds, s.eventID, search)
	if err != nil {
		return nil, err
	}
	return rowsFromBookings(bookings), nil
}

func (s captainSource) Save(ctx context.Context, row Row) error {
	return s.backend.CaptainMarkAttendance(ctx, s.creds, galaxy.ID(row.BookingID), row.Status)
}

func rowsFromBookings(bookings []galaxy.Booking) []Row {
	rows := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, rowFromBooking(b))
	}
	return rows
}
