package main

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/auth"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/product-service/config"
	"github.com/yashrajoria/shopswift/services/product-service/controllers"
	"github.com/yashrajoria/shopswift/services/product-service/repository"
	"github.com/yashrajoria/shopswift/services/product-service/routes"
	"github.com/yashrajoria/shopswift/services/product-service/services"
)

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("product-service")
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

	repo := repository.NewProductRepository(mongoClient.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Log.Warn("failed to ensure product indexes", zap.Error(err))
	}

	var images services.ImageStore
	if cfg.S3Bucket != "" {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			logger.Log.Fatal("failed to load aws config", zap.Error(err))
		}
		images = awspkg.NewS3ImageStore(awsCfg, cfg.S3Bucket, cfg.S3PublicBaseURL)
	} else {
		logger.Log.Warn("AWS_S3_BUCKET not set, image uploads disabled")
	}

	validation.RegisterCustomValidators()

	productService := services.NewProductService(repo, services.NewProductCache(redisClient, cfg.CacheTTL), images, cfg.S3Prefix, metrics)
	productController := controllers.NewProductController(productService, cfg.MaxUploadBytes)

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	routes.RegisterRoutes(router, productController,
		auth.NewTokenManager(cfg.JWTSecret, 0),
		auth.NewRedisDenylist(redisClient),
	)

	server.Run(cfg.Port, router, func() {
		close(stop)
		commondb.DisconnectMongo(mongoClient)
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("failed to close redis", zap.Error(err))
		}
	})
}
