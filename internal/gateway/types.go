package gateway

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the gateway's webhook event discriminator
type EventType string

const (
	EventPaymentCreated   EventType = "PAYMENT_CREATED"
	EventPaymentConfirmed EventType = "PAYMENT_CONFIRMED"
	EventPaymentReceived  EventType = "PAYMENT_RECEIVED"
	EventPaymentOverdue   EventType = "PAYMENT_OVERDUE"
	EventPaymentRefunded  EventType = "PAYMENT_REFUNDED"
	EventPaymentDeleted   EventType = "PAYMENT_DELETED"

	EventSubscriptionCreated     EventType = "SUBSCRIPTION_CREATED"
	EventSubscriptionUpdated     EventType = "SUBSCRIPTION_UPDATED"
	EventSubscriptionDeleted     EventType = "SUBSCRIPTION_DELETED"
	EventSubscriptionInactivated EventType = "SUBSCRIPTION_INACTIVATED"
)

// WebhookEvent is the gateway-shaped callback payload. Either Payment or
// Subscription is present depending on the event type; both carry the
// gateway's own identifiers used to correlate back to a subscriber.
type WebhookEvent struct {
	Event        EventType            `json:"event"`
	Payment      *PaymentPayload      `json:"payment,omitempty"`
	Subscription *SubscriptionPayload `json:"subscription,omitempty"`
}

// PaymentPayload is the payment sub-object embedded in payment.* events
type PaymentPayload struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer"`
	SubscriptionID string          `json:"subscription,omitempty"`
	Value          decimal.Decimal `json:"value"`
	BillingType    string          `json:"billingType,omitempty"`
	DueDate        string          `json:"dueDate,omitempty"`
	InvoiceURL     string          `json:"invoiceUrl,omitempty"`
}

// SubscriptionPayload is the subscription sub-object embedded in
// subscription.* events
type SubscriptionPayload struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer"`
	Value      decimal.Decimal `json:"value"`
	Cycle      string          `json:"cycle,omitempty"`
	Status     string          `json:"status,omitempty"`
}

// EntityID returns the gateway identifier the event should be correlated by
func (e *WebhookEvent) EntityID() string {
	if e.Payment != nil {
		return e.Payment.ID
	}
	if e.Subscription != nil {
		return e.Subscription.ID
	}
	return ""
}

// Customer is a gateway-side customer record
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateCustomerRequest registers a subscriber with the gateway
type CreateCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"cpfCnpj,omitempty"`
}

// Subscription is a gateway-side recurring billing agreement
type Subscription struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer"`
	Value       decimal.Decimal `json:"value"`
	Cycle       string          `json:"cycle"`
	Status      string          `json:"status"`
	NextDueDate string          `json:"nextDueDate"`
	PaymentID   string          `json:"paymentId,omitempty"`
	InvoiceURL  string          `json:"invoiceUrl,omitempty"`
}

// CreateSubscriptionRequest opens a recurring billing agreement at the gateway
type CreateSubscriptionRequest struct {
	CustomerID  string          `json:"customer"`
	Value       decimal.Decimal `json:"value"`
	Cycle       string          `json:"cycle"`
	Description string          `json:"description,omitempty"`
	NextDueDate string          `json:"nextDueDate"`
}

// CycleFromPeriod maps a plan period to the gateway's billing cycle string
func CycleFromPeriod(period string) string {
	switch period {
	case "YEARLY":
		return "YEARLY"
	default:
		return "MONTHLY"
	}
}

// NextDueDate formats the first charge date for a new agreement
func NextDueDate(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
