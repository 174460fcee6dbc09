package galaxy

import (
	"context"
	"net/http"
	"net/url"
)

// ListWageRates returns the base wage per role.
func (c *Client) ListWageRates(ctx context.Context, creds *Credentials) ([]WageRate, error) {
	var rates []WageRate
	_, err := c.do(ctx, creds, call{op: "list_wage_rates", method: http.MethodGet, path: "/api/wages", out: &rates})
	return rates, err
}

// UpdateWageRate sets the base wage of a role.
func (c *Client) UpdateWageRate(ctx context.Context, creds *Credentials, role string, amount int64) error {
	body := map[string]int64{"base_amount": amount}
	_, err := c.do(ctx, creds, call{op: "update_wage_rate", method: http.MethodPut, path: "/api/wages/" + url.PathEscape(role), body: body})
	return err
}
