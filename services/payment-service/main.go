package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/clients"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/payment-service/config"
	"github.com/yashrajoria/shopswift/services/payment-service/controllers"
	"github.com/yashrajoria/shopswift/services/payment-service/models"
	"github.com/yashrajoria/shopswift/services/payment-service/repository"
	"github.com/yashrajoria/shopswift/services/payment-service/routes"
	"github.com/yashrajoria/shopswift/services/payment-service/services"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("payment-service")
	metrics := server.InitObservability(ctx, &opts)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := commondb.ConnectPostgres(cfg.Postgres, logger.Log, &models.Payment{})
	if err != nil {
		logger.Log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	redisClient, err := commondb.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}

	publisher, err := events.NewPublisher(ctx, cfg.Events)
	if err != nil {
		logger.Log.Warn("event publishing disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	}

	var (
		gateway  services.Gateway
		webhooks services.WebhookParser
	)
	switch cfg.Gateway {
	case models.ProviderStripe:
		sg := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripePublicKey, cfg.StripeWebhookKey, nil)
		gateway, webhooks = sg, sg
	default:
		gateway = services.NewRazorpayGateway(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.UpstreamTimeout)
	}
	logger.Log.Info("payment gateway selected", zap.String("gateway", gateway.Name()))

	validation.RegisterCustomValidators()

	paymentService := services.NewPaymentService(
		repository.NewPaymentRepository(db),
		clients.NewOrderClient(cfg.OrderServiceURL, cfg.InternalAPIKey, cfg.UpstreamTimeout),
		gateway,
		webhooks,
		publisher,
		metrics,
		services.Options{Currency: cfg.Currency, MinorUnitFactor: cfg.MinorUnitFactor},
	)
	paymentController := controllers.NewPaymentController(paymentService)

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterPaymentRoutes(router, paymentController,
		auth.NewTokenManager(cfg.JWTSecret, 0),
		auth.NewRedisDenylist(redisClient),
	)

	server.Run(cfg.Port, router, func() {
		close(stop)
		if err := publisher.Close(); err != nil {
			logger.Log.Error("failed to close event publisher", zap.Error(err))
		}
		if err := commondb.ClosePostgres(db); err != nil {
			logger.Log.Error("failed to close postgres", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("failed to close redis", zap.Error(err))
		}
	})
}
