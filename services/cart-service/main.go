package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/cart-service/config"
	"github.com/yashrajoria/shopswift/services/cart-service/controllers"
	"github.com/yashrajoria/shopswift/services/cart-service/database"
	"github.com/yashrajoria/shopswift/services/cart-service/routes"
	"github.com/yashrajoria/shopswift/services/cart-service/services"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/clients"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
	"github.com/yashrajoria/shopswift/services/common/validation"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("cart-service")
	metrics := server.InitObservability(ctx, &opts)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	redisClient, err := commondb.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}

	validation.RegisterCustomValidators()

	repo := database.NewCartRepository(redisClient, cfg.CartTTL)
	productClient := clients.NewProductClient(cfg.ProductServiceURL, cfg.UpstreamTimeout)
	cartService := services.NewCartService(repo, productClient, metrics)
	cartController := controllers.NewCartController(cartService)

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterCartRoutes(router, cartController,
		auth.NewTokenManager(cfg.JWTSecret, 0),
		auth.NewRedisDenylist(redisClient),
	)

	server.Run(cfg.Port, router, func() {
		close(stop)
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("failed to close redis", zap.Error(err))
		}
	})
}
