// Package payment is the boundary to the external card processor.  It
// wraps the processor's REST API (intent creation and capture) behind a
// small client with a bounded timeout, verifies inbound webhook
// signatures, and decodes settlement events into a closed set of variants
// so business logic never branches on raw event payloads.
package payment

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
)

// ErrUpstream wraps any transport-level failure talking to the processor:
// timeouts, connection errors, 5xx responses.  Callers may retry; the
// client itself never retries because intent creation is not idempotent.
var ErrUpstream = errors.New("payment gateway unavailable")

const defaultBaseURL = "https://api.stripe.com"

// Client calls the processor's REST API.  Every request carries the
// configured timeout so a slow processor surfaces as a retryable
// ErrUpstream instead of hanging the request.
type Client struct {
	secretKey string
	baseURL   string
	httpc     *http.Client
}

// NewClient builds a Client authenticated with the given secret key.  A
// zero timeout defaults to 10 seconds.
func NewClient(secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// Intent is the subset of the processor's payment-intent object the
// service cares about.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

// apiError is a non-2xx answer from the processor with a parseable body.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("payment gateway: %d %s", e.Status, e.Message)
}

// CreateIntent asks the processor to create a payment intent for the
// given amount in minor units.  The booking id travels as correlation
// metadata so webhook events can be matched back without relying on the
// intent id alone.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency, bookingID string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", currency)
	form.Set("metadata[bookingId]", bookingID)
	return c.post(ctx, "/v1/payment_intents", form)
}

// Capture completes a manually-captured intent.  amountMinor of zero
// captures the full authorized amount.
func (c *Client) Capture(ctx context.Context, intentID string, amountMinor int64) (*Intent, error) {
	form := url.Values{}
	if amountMinor > 0 {
		form.Set("amount_to_capture", strconv.FormatInt(amountMinor, 10))
	}
	return c.post(ctx, "/v1/payment_intents/"+url.PathEscape(intentID)+"/capture", form)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return nil, &apiError{Status: resp.StatusCode, Message: e.Error.Message}
	}
	var in Intent
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: bad response: %v", ErrUpstream, err)
	}
	return &in, nil
}
