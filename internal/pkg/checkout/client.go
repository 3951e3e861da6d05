// Package checkout provides a client for the payment processor's hosted
// checkout API. It encapsulates session creation and retrieval; the processor
// owns the checkout UI and card handling, we only hold opaque session ids and
// the metadata the processor echoes back verbatim.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaymentStatusPaid is the only session payment status that triggers a write
// during reconciliation.
const PaymentStatusPaid = "paid"

// Client is a client for the processor's checkout API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient creates a new checkout client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateSessionParams carries everything a hosted session needs. Metadata is
// bound at creation and echoed back on retrieval.
type CreateSessionParams struct {
	LoanID        uint
	LoanName      string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// Session is the processor's view of a checkout session. PaymentIntentID is
// the stable identifier across retries of the same payment; the session id
// is not.
type Session struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentIntentID string            `json:"payment_intent"`
	PaymentStatus   string            `json:"payment_status"`
	CustomerEmail   string            `json:"customer_email"`
	AmountTotal     int64             `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
}

// APIError represents an error response from the processor.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkout api error (status %d): %s", e.StatusCode, e.Message)
}

// CreateSession opens a hosted checkout session and returns it together with
// the redirect URL the client should be sent to.
func (c *Client) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.LoanName)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[loanId]", strconv.FormatUint(uint64(params.LoanID), 10))
	form.Set("metadata[loanName]", params.LoanName)

	return c.doSession(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
}

// RetrieveSession fetches the authoritative state of a session from the
// processor. This is the only trusted source of payment truth; the query
// parameter coming back on the redirect is just an opaque reference.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	return c.doSession(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
}

func (c *Client) doSession(ctx context.Context, method, path string, body io.Reader) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach checkout api: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(bodyBytes, &struct {
			Error *APIError `json:"error"`
		}{Error: apiErr}); err != nil {
			return nil, fmt.Errorf("failed to decode checkout error response (status %d)", resp.StatusCode)
		}
		return nil, apiErr
	}

	var session Session
	if err := json.Unmarshal(bodyBytes, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	return &session, nil
}
