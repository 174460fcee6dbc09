// Package events serves event management for admins and the event list of captains.
package events

import (
	"context"
	"strconv"

	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

// Event statuses.
var Statuses = []string{"upcoming", "ongoing", "completed", "cancelled"}

const perPage = 20

// Backend is the part of the Galaxy API events need.
type Backend interface {
	ListEvents(ctx context.Context, creds *galaxy.Credentials, filter galaxy.EventFilter) ([]galaxy.Event, error)
	GetEvent(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID) (galaxy.Event, error)
	CreateEvent(ctx context.Context, creds *galaxy.Credentials, input galaxy.EventInput) (galaxy.Event, error)
	UpdateEvent(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID, input galaxy.EventInput) (galaxy.Event, error)
	DeleteEvent(ctx context.Context, creds *galaxy.Credentials, id galaxy.ID) error
	ListUsers(ctx context.Context, creds *galaxy.Credentials, filter galaxy.UserFilter) ([]galaxy.User, error)
	CaptainEvents(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.Event, error)
}

// Form is the submitted event form.
type Form struct {
	Name          string `validate:"required,max=120"`
	Venue         string `validate:"required,max=200"`
	Date          string `validate:"required,datetime=2006-01-02"`
	ReportingTime string `validate:"omitempty,datetime=15:04"`
	Status        string `validate:"required,oneof=upcoming ongoing completed cancelled"`
	RequiredStaff string `validate:"required,number"`
	ExtraAmount   string `validate:"omitempty,number"`
	CaptainID     string `validate:"omitempty,max=64"`
	Description   string `validate:"max=1000"`
}

var formMessages = map[string]string{
	"Name":          "Event name is required (max 120 characters).",
	"Venue":         "Venue is required (max 200 characters).",
	"Date":          "Pick a date (YYYY-MM-DD).",
	"ReportingTime": "Use a 24-hour time such as 17:30.",
	"Status":        "Choose a valid status.",
	"RequiredStaff": "Required staff must be a whole number from 1 to 10000.",
	"ExtraAmount":   "Extra amount must be a whole number of rupees up to 10000000.",
	"Description":   "Description is too long.",
}

func formFromEvent(e galaxy.Event) Form {
	return Form{
		Name:          e.Name,
		Venue:         e.Venue,
		Date:          e.Date,
		ReportingTime: e.ReportingTime,
		Status:        e.Status,
		RequiredStaff: strconv.Itoa(e.RequiredStaff),
		ExtraAmount:   strconv.FormatInt(e.ExtraAmount, 10),
		CaptainID:     e.CaptainID.String(),
		Description:   e.Description,
	}
}

// Bounds of the numeric event fields.
const (
	maxRequiredStaff = 10_000
	maxExtraAmount   = 10_000_000
)

// input converts a validated form. Numbers that do not fit their bounds are
// returned as field errors keyed like the validator's.
func (f Form) input() (galaxy.EventInput, map[string]string) {
	errs := make(map[string]string)
	staff, err := strconv.Atoi(f.RequiredStaff)
	if err != nil || staff < 1 || staff > maxRequiredStaff {
		errs["RequiredStaff"] = formMessages["RequiredStaff"]
	}
	extra, err := galaxy.ParseAmount(f.ExtraAmount)
	if err != nil || extra < 0 || extra > maxExtraAmount {
		errs["ExtraAmount"] = formMessages["ExtraAmount"]
	}
	if len(errs) > 0 {
		return galaxy.EventInput{}, errs
	}
	return galaxy.EventInput{
		Name:          f.Name,
		Venue:         f.Venue,
		Date:          f.Date,
		ReportingTime: f.ReportingTime,
		Status:        f.Status,
		RequiredStaff: staff,
		CaptainID:     f.CaptainID,
		ExtraAmount:   extra,
		Description:   f.Description,
	}, nil
}

// ListPage is the view model of the admin event list.
type ListPage struct {
	Events     []galaxy.Event
	Search     string
	Status     string
	Statuses   []string
	Pagination shared.Pagination
	CanCreate  bool
	CanEdit    bool
	CanDelete  bool
}

// FormPage is the view model of the create and edit forms.
type FormPage struct {
	ID       string
	Form     Form
	Errors   map[string]string
	Statuses []string
	Captains []galaxy.User
}

// CaptainListPage is the view model of the captain event list.
type CaptainListPage struct {
	Events []galaxy.Event
}
