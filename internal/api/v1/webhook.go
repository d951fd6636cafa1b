package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/service"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	webhookService service.WebhookService
	config         *config.Configuration
	logger         *logger.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, cfg *config.Configuration, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		config:         cfg,
		logger:         logger,
	}
}

// HandleGatewayWebhook ingests gateway callbacks. The gateway retries on any
// non-200, so every ingestion outcome except a bad shared secret is
// acknowledged with 200; failures are logged, never surfaced.
func (h *WebhookHandler) HandleGatewayWebhook(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}

	var event gateway.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Errorw("failed to decode webhook payload", "error", err)
		c.JSON(http.StatusOK, dto.NewWebhookAckResponse())
		return
	}

	if err := h.webhookService.HandleEvent(c.Request.Context(), &event); err != nil {
		h.logger.Errorw("webhook event not applied",
			"event", event.Event,
			"gateway_entity_id", event.EntityID(),
			"error", err,
		)
	}

	c.JSON(http.StatusOK, dto.NewWebhookAckResponse())
}

// authorized checks the optional shared-secret header in constant time.
// An empty configured token disables the check.
func (h *WebhookHandler) authorized(c *gin.Context) bool {
	expected := h.config.Gateway.WebhookToken
	if expected == "" {
		return true
	}
	provided := c.GetHeader(types.HeaderWebhookToken)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
