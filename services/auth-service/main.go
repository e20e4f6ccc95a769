package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/auth-service/config"
	"github.com/yashrajoria/shopswift/services/auth-service/controllers"
	"github.com/yashrajoria/shopswift/services/auth-service/repository"
	"github.com/yashrajoria/shopswift/services/auth-service/routes"
	"github.com/yashrajoria/shopswift/services/auth-service/services"
	"github.com/yashrajoria/shopswift/services/common/auth"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
	"github.com/yashrajoria/shopswift/services/common/validation"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("auth-service")
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

	userRepo := repository.NewUserRepository(mongoClient.Database(cfg.MongoDatabase))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Warn("failed to ensure user indexes", zap.Error(err))
	}

	validation.RegisterCustomValidators()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	denylist := auth.NewRedisDenylist(redisClient)
	authService := services.NewAuthService(userRepo, tokens, denylist, services.NewPasswordHasher(cfg.BcryptCost), publisher, metrics)
	authController := controllers.NewAuthController(authService, controllers.CookieOptions{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	})

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterUserRoutes(router, authController, tokens, denylist, cfg.InternalKey)

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
