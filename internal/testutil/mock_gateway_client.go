package testutil

import (
	"context"
	"sync"

	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/types"
)

var _ gateway.Client = (*MockGatewayClient)(nil)

// MockGatewayClient records outbound gateway calls and replies with canned
// identifiers. Set Fail to simulate an unreachable gateway.
type MockGatewayClient struct {
	mu sync.Mutex

	Fail bool

	Customers     []*gateway.CreateCustomerRequest
	Subscriptions []*gateway.CreateSubscriptionRequest
	Cancellations []string
}

func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{}
}

func (c *MockGatewayClient) CreateCustomer(ctx context.Context, req *gateway.CreateCustomerRequest) (*gateway.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return nil, c.unreachable()
	}

	c.Customers = append(c.Customers, req)
	return &gateway.Customer{
		ID:    "cus_" + types.GenerateUUID(),
		Name:  req.Name,
		Email: req.Email,
	}, nil
}

func (c *MockGatewayClient) CreateSubscription(ctx context.Context, req *gateway.CreateSubscriptionRequest) (*gateway.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return nil, c.unreachable()
	}

	c.Subscriptions = append(c.Subscriptions, req)
	return &gateway.Subscription{
		ID:          "gwsub_" + types.GenerateUUID(),
		CustomerID:  req.CustomerID,
		Value:       req.Value,
		Cycle:       req.Cycle,
		Status:      "PENDING",
		NextDueDate: req.NextDueDate,
		InvoiceURL:  "https://gateway.test/invoice",
	}, nil
}

func (c *MockGatewayClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return c.unreachable()
	}

	c.Cancellations = append(c.Cancellations, subscriptionID)
	return nil
}

func (c *MockGatewayClient) unreachable() error {
	return ierr.NewError("gateway unreachable").
		WithHint("Payment gateway is unreachable, please retry").
		Mark(ierr.ErrHTTPClient)
}
