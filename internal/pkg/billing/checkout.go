package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pourhaus/pourhaus/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// CheckoutClient creates provider checkout sessions for approved
// applications. It is the only surface through which this system talks to
// the billing provider directly; everything else arrives via webhook.
type CheckoutClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

// CheckoutSession is the subset of the provider response the app needs.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams carries everything the provider needs to run checkout and
// everything the webhook needs to activate the membership afterwards.
type CheckoutParams struct {
	ApplicationID uint
	UserID        uint
	TierName      string
	PriceRef      string
	SuccessURL    string
	CancelURL     string
}

// NewCheckoutClientFromEnv builds a client from process environment.
func NewCheckoutClientFromEnv() *CheckoutClient {
	return &CheckoutClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession starts a subscription checkout. The application id,
// user id and tier name ride along as session metadata so the completion
// webhook can activate the membership without any extra lookup state.
func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	if p.ApplicationID == 0 || p.UserID == 0 {
		return nil, errors.New("application id and user id are required")
	}
	if strings.TrimSpace(p.PriceRef) == "" {
		return nil, errors.New("tier has no provider price configured")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", p.PriceRef)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("metadata[applicationId]", strconv.FormatUint(uint64(p.ApplicationID), 10))
	form.Set("metadata[userId]", strconv.FormatUint(uint64(p.UserID), 10))
	form.Set("metadata[tierName]", p.TierName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("checkout session creation failed: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("invalid checkout session response: %w", err)
	}
	if session.URL == "" {
		return nil, errors.New("checkout session response missing url")
	}
	return &session, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
