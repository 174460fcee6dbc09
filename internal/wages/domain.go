// Package wages serves role wage rates and worker earnings.
package wages

import (
	"context"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
)

// Backend is the part of the Galaxy API wage pages need.
type Backend interface {
	ListWageRates(ctx context.Context, creds *galaxy.Credentials) ([]galaxy.WageRate, error)
	UpdateWageRate(ctx context.Context, creds *galaxy.Credentials, role string, amount int64) error
	MyWages(ctx context.Context, creds *galaxy.Credentials) (galaxy.Earnings, error)
}

// RateForm is one posted wage rate.
type RateForm struct {
	Amount string `validate:"required,number,max=9"`
}

var rateMessages = map[string]string{
	"Amount": "Enter the base amount in whole rupees",
}

// RateView is one role row on the wage screen.
type RateView struct {
	Role       string
	Label      string
	BaseAmount int64
	Set        bool
}

// RatesPage is the view model of the admin wage screen.
type RatesPage struct {
	Rates   []RateView
	CanEdit bool
	Errors  map[string]string
}

// EarningsPage is the view model of the worker wage screen.
type EarningsPage struct {
	Earnings galaxy.Earnings
	Paid     int
}

// mergeRates lists every worker-facing role in display order, with the
// backend rate when one exists.
func mergeRates(rates []galaxy.WageRate) []RateView {
	byRole := make(map[string]int64, len(rates))
	for _, rate := range rates {
		byRole[rate.Role] = rate.BaseAmount
	}
	var out []RateView
	for _, role := range access.WorkerRoles() {
		amount, ok := byRole[string(role)]
		out = append(out, RateView{Role: string(role), Label: role.Label(), BaseAmount: amount, Set: ok})
	}
	return out
}
