package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Sender delivers transactional email (membership invitations, found-pet alerts).
// Send is best-effort from the caller's point of view: callers log failures and
// never fail a request because a notification could not be delivered.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendClient sends email via the Resend HTTP API.
// See https://resend.com/docs/api-reference/emails/send-email.
type ResendClient struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewResendClient returns a client that uses the given API key and optional base URL.
func NewResendClient(apiKey, baseURL, from string) *ResendClient {
	if baseURL == "" {
		baseURL = "https://api.resend.com/emails"
	}
	return &ResendClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send delivers one email to the given recipient.
func (c *ResendClient) Send(ctx context.Context, to, subject, html string) error {
	if c.APIKey == "" {
		return fmt.Errorf("email: API key not configured")
	}
	body := map[string]interface{}{
		"from":    c.From,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
