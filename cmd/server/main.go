package main

import (
	"context"
	"net/http"
	"time"

	"github.com/clubpulse/clubpulse/internal/api"
	"github.com/clubpulse/clubpulse/internal/api/cron"
	v1 "github.com/clubpulse/clubpulse/internal/api/v1"
	"github.com/clubpulse/clubpulse/internal/cache"
	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	"github.com/clubpulse/clubpulse/internal/repository"
	"github.com/clubpulse/clubpulse/internal/service"
	"github.com/clubpulse/clubpulse/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Payment gateway
			gateway.NewClient,

			// Repositories
			repository.NewSubscriberRepository,
			repository.NewPlanRepository,
			repository.NewPartnerRepository,
			repository.NewCashbackRepository,
			repository.NewTransactionRepository,

			// Services
			service.NewServiceParams,
			service.NewSettlementService,
			service.NewWalletService,
			service.NewSubscriptionService,
			service.NewWebhookService,

			// API
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	settlementService service.SettlementService,
	walletService service.WalletService,
	subscriptionService service.SubscriptionService,
	webhookService service.WebhookService,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(),
		Settlement:       v1.NewSettlementHandler(settlementService, logger),
		Wallet:           v1.NewWalletHandler(walletService, logger),
		Subscription:     v1.NewSubscriptionHandler(subscriptionService, logger),
		Webhook:          v1.NewWebhookHandler(webhookService, cfg, logger),
		SubscriptionCron: cron.NewSubscriptionCronHandler(subscriptionService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			defer db.Close()
			return srv.Shutdown(ctx)
		},
	})
}
