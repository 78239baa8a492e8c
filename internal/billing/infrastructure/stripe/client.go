package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

const defaultBaseURL = "https://api.stripe.com"

// CheckoutSession is the processor's session handle: the ID comes back to
// us later inside the checkout.session.completed webhook.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams describes one session creation request. UserID travels in
// session metadata so the webhook can correlate back to the user.
type CheckoutParams struct {
	UserID     uuid.UUID
	Product    domain.Product
	CustomerID string
	SuccessURL string
	CancelURL  string
}

// Client calls the payment processor's REST API. Outbound calls run behind
// a circuit breaker; an open circuit surfaces as ErrUpstreamUnavailable so
// callers can retry later instead of piling onto a failing upstream.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*CheckoutSession]
	logger     *slog.Logger
}

// NewClient creates a processor client. An empty baseURL targets the real
// API; tests point it at a local server.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker[*CheckoutSession](settings),
		logger:     logger,
	}
}

// CreateCheckoutSession creates a hosted checkout session for the product.
// Processor-side failures map to domain.ErrUpstreamUnavailable; the call is
// not retried internally.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", checkoutMode(params.Product.Type))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][price]", params.Product.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[user_id]", params.UserID.String())
	form.Set("metadata[product_id]", params.Product.ID)
	if params.CustomerID != "" {
		form.Set("customer", params.CustomerID)
	}

	session, err := c.breaker.Execute(func() (*CheckoutSession, error) {
		return c.postSession(ctx, form)
	})
	if err != nil {
		c.logger.Warn("checkout session creation failed",
			"product_id", params.Product.ID,
			"error", err,
		)
		return nil, fmt.Errorf("create checkout session: %w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return session, nil
}

func (c *Client) postSession(ctx context.Context, form url.Values) (*CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("processor returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("session response missing url")
	}
	return &session, nil
}

func checkoutMode(t domain.ProductType) string {
	if t == domain.ProductRecurring {
		return "subscription"
	}
	return "payment"
}
