package api

import (
	"github.com/clubpulse/clubpulse/internal/api/cron"
	v1 "github.com/clubpulse/clubpulse/internal/api/v1"
	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/rest/middleware"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Settlement   *v1.SettlementHandler
	Wallet       *v1.WalletHandler
	Subscription *v1.SubscriptionHandler
	Webhook      *v1.WebhookHandler

	SubscriptionCron *cron.SubscriptionCronHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	settlements := router.Group("/settlements")
	{
		settlements.POST("/preview", handlers.Settlement.PreviewSettlement)
		settlements.POST("", handlers.Settlement.CommitSettlement)
		settlements.GET("/:id", handlers.Settlement.GetSettlement)
		settlements.POST("/:id/cancel", handlers.Settlement.CancelSettlement)
	}

	subscribers := router.Group("/subscribers")
	{
		subscribers.GET("/:id/wallet", handlers.Wallet.GetWallet)
		subscribers.GET("/:id/wallet/cashback", handlers.Wallet.GetCashbackSummary)
		subscribers.POST("/:id/wallet/cashback/redeem", handlers.Wallet.RedeemCashback)
		subscribers.GET("/:id/subscription", handlers.Subscription.GetSubscription)
		subscribers.POST("/:id/subscription/cancel", handlers.Subscription.CancelSubscription)
	}

	router.POST("/checkout", handlers.Subscription.Checkout)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/gateway", handlers.Webhook.HandleGatewayWebhook)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("/expire", handlers.SubscriptionCron.ExpireSubscriptions)
	}
}
