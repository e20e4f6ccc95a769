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
	"github.com/yashrajoria/shopswift/services/order-service/config"
	"github.com/yashrajoria/shopswift/services/order-service/controllers"
	"github.com/yashrajoria/shopswift/services/order-service/repository"
	"github.com/yashrajoria/shopswift/services/order-service/routes"
	"github.com/yashrajoria/shopswift/services/order-service/services"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("order-service")
	metrics := server.InitObservability(ctx, &opts)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	mongoClient, err := commondb.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Log.Fatal("failed to connect to mongo", zap.Error(err))
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

	repo := repository.NewOrderRepository(mongoClient.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Log.Warn("failed to ensure order indexes", zap.Error(err))
	}

	validation.RegisterCustomValidators()

	productClient := clients.NewProductClient(cfg.ProductServiceURL, cfg.UpstreamTimeout)
	orderService := services.NewOrderService(repo, productClient, publisher, metrics)
	orderController := controllers.NewOrderController(orderService)

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterOrderRoutes(router, orderController,
		auth.NewTokenManager(cfg.JWTSecret, 0),
		auth.NewRedisDenylist(redisClient),
		cfg.InternalAPIKey,
	)

	server.Run(cfg.Port, router, func() {
		close(stop)
		if err := publisher.Close(); err != nil {
			logger.Log.Error("failed to close event publisher", zap.Error(err))
		}
		commondb.DisconnectMongo(mongoClient)
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("failed to close redis", zap.Error(err))
		}
	})
}
