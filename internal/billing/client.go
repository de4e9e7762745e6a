package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// CheckoutSession is the provider-hosted payment page created for a subscription purchase.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Subscription is the current subscription state for an organization.
type Subscription struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// Client talks to the payment provider. Implementations must not be called
// for orgs the caller has not already authorized.
type Client interface {
	CreateCheckoutSession(ctx context.Context, orgID, priceID, successURL, cancelURL string) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// StripeClient implements Client against the Stripe HTTP API.
// See https://docs.stripe.com/api/checkout/sessions/create.
type StripeClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewStripeClient returns a client that uses the given API key and optional base URL.
func NewStripeClient(apiKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}
	return &StripeClient{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// CreateCheckoutSession creates a hosted checkout session for the org.
// The org ID is carried in client_reference_id so webhooks can attribute payment.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, orgID, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("client_reference_id", orgID)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var sess CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSubscription fetches the subscription by provider ID.
func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if c.APIKey == "" {
		return fmt.Errorf("billing: API key not configured")
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("billing: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
