package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clubpulse/clubpulse/internal/config"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the outbound surface to the payment gateway. Checkout initiation
// is the only flow that calls out; webhook ingestion is inbound-only.
type Client interface {
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error)
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type httpClient struct {
	client  *retryablehttp.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates a gateway client backed by a retrying HTTP client.
// Gateway unreachability surfaces to the caller as ErrHTTPClient so the
// checkout endpoint can report a retryable failure.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Gateway.MaxRetries
	rc.HTTPClient.Timeout = time.Duration(cfg.Gateway.TimeoutSecs) * time.Second
	rc.Logger = nil // zap handles request logging

	return &httpClient{
		client:  rc,
		baseURL: cfg.Gateway.BaseURL,
		apiKey:  cfg.Gateway.APIKey,
		logger:  log,
	}
}

func (c *httpClient) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return c.do(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, nil)
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode gateway request").
				Mark(ierr.ErrSystem)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build gateway request").
			Mark(ierr.ErrHTTPClient)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Payment gateway is unreachable, please retry").
			WithReportableDetails(map[string]any{
				"path": path,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read gateway response").
			Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode >= 400 {
		c.logger.Errorw("gateway request failed",
			"path", path,
			"status_code", resp.StatusCode,
			"response", string(respBody),
		)
		return ierr.NewError(fmt.Sprintf("gateway returned status %d", resp.StatusCode)).
			WithHint("Payment gateway rejected the request").
			WithReportableDetails(map[string]any{
				"status_code": resp.StatusCode,
				"path":        path,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to decode gateway response").
				Mark(ierr.ErrHTTPClient)
		}
	}

	return nil
}
