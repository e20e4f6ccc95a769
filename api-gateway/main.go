package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/api-gateway/config"
	"github.com/yashrajoria/shopswift/api-gateway/routes"
	"github.com/yashrajoria/shopswift/api-gateway/utils"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("api-gateway")
	server.InitObservability(ctx, &opts)

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterAllRoutes(router, utils.NewForwarder(cfg.ProxyTimeout), cfg.Services)

	logger.Log.Info("gateway routes registered",
		zap.String("auth", cfg.Services.Auth),
		zap.String("products", cfg.Services.Products),
		zap.String("cart", cfg.Services.Cart),
		zap.String("orders", cfg.Services.Orders),
		zap.String("payments", cfg.Services.Payments),
	)

	server.Run(cfg.Port, router, func() { close(stop) })
}
