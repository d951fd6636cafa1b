package cron

import (
	"net/http"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionCronHandler exposes the expiration sweep as an externally
// triggered cron endpoint. The sweep is idempotent, so overlapping triggers
// are harmless.
type SubscriptionCronHandler struct {
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

func NewSubscriptionCronHandler(subscriptionService service.SubscriptionService, log *logger.Logger) *SubscriptionCronHandler {
	return &SubscriptionCronHandler{
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// ExpireSubscriptions flips ACTIVE enrollments with a passed validity window
// to the persisted EXPIRED status.
func (h *SubscriptionCronHandler) ExpireSubscriptions(c *gin.Context) {
	expired, err := h.subscriptionService.ExpireDueSubscriptions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("expiration sweep triggered", "expired", expired)
	c.JSON(http.StatusOK, &dto.ExpireSweepResponse{Expired: expired})
}
