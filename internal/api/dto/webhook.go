package dto

// WebhookAckResponse is the unconditional acknowledgement for gateway
// callbacks. The gateway retries on anything but 200, so ingestion failures
// are logged, never surfaced.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}

func NewWebhookAckResponse() *WebhookAckResponse {
	return &WebhookAckResponse{Received: true}
}
