// Package billing hands authenticated users off to a hosted payment checkout.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charlesng35/teamkit/internal/models"
)

// DefaultTrialDays is the trial length advertised to the checkout page.
const DefaultTrialDays = 14

// ErrPriceRequired is returned when a checkout is requested without a price.
var ErrPriceRequired = errors.New("billing: price id is required")

// CheckoutRequest describes who is buying which price.
type CheckoutRequest struct {
	User    *models.User
	Team    *models.Team
	PriceID string
}

// CheckoutProvider produces the URL a user is redirected to after authenticating
// with a pending checkout.
type CheckoutProvider interface {
	CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error)
}

// Config configures HostedCheckout.
type Config struct {
	CheckoutURL string
	BaseURL     string
	TrialDays   int
}

// HostedCheckout builds redirect URLs for an externally hosted checkout page.
type HostedCheckout struct {
	checkoutURL *url.URL
	baseURL     string
	trialDays   int
}

// NewHostedCheckout validates cfg. An empty CheckoutURL is allowed and sends
// buyers to the pricing page.
func NewHostedCheckout(cfg Config) (*HostedCheckout, error) {
	hc := &HostedCheckout{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		trialDays: cfg.TrialDays,
	}
	if hc.trialDays < 0 {
		hc.trialDays = 0
	}

	if raw := strings.TrimSpace(cfg.CheckoutURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("billing: parse checkout url: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("billing: checkout url %q must be absolute", raw)
		}
		hc.checkoutURL = parsed
	}
	return hc, nil
}

// CheckoutURL returns where to send the buyer. Without a team the buyer is sent
// to sign up first and resume the checkout afterwards.
func (h *HostedCheckout) CheckoutURL(_ context.Context, req CheckoutRequest) (string, error) {
	priceID := strings.TrimSpace(req.PriceID)
	if priceID == "" {
		return "", ErrPriceRequired
	}

	if req.Team == nil || req.User == nil {
		q := url.Values{}
		q.Set("redirect", "checkout")
		q.Set("priceId", priceID)
		return "/sign-up?" + q.Encode(), nil
	}

	if h.checkoutURL == nil {
		return h.baseURL + "/pricing", nil
	}

	target := *h.checkoutURL
	q := target.Query()
	q.Set("price_id", priceID)
	q.Set("team_id", req.Team.ID)
	q.Set("client_reference_id", req.User.ID)
	if req.Team.BillingCustomerID != nil && *req.Team.BillingCustomerID != "" {
		q.Set("customer", *req.Team.BillingCustomerID)
	} else {
		q.Set("customer_email", req.User.Email)
	}
	if h.trialDays > 0 {
		q.Set("trial_days", strconv.Itoa(h.trialDays))
	}
	q.Set("success_url", h.baseURL+"/dashboard")
	q.Set("cancel_url", h.baseURL+"/pricing")
	target.RawQuery = q.Encode()

	return target.String(), nil
}
