package main

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/clients"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/server"
	"github.com/yashrajoria/shopswift/services/notification-service/config"
	"github.com/yashrajoria/shopswift/services/notification-service/consumer"
	"github.com/yashrajoria/shopswift/services/notification-service/controllers"
	"github.com/yashrajoria/shopswift/services/notification-service/models"
	"github.com/yashrajoria/shopswift/services/notification-service/repository"
	"github.com/yashrajoria/shopswift/services/notification-service/routes"
	"github.com/yashrajoria/shopswift/services/notification-service/sender"
	"github.com/yashrajoria/shopswift/services/notification-service/services"
)

type runner interface {
	Run(ctx context.Context)
}

func main() {
	ctx := context.Background()

	opts := server.OptionsFromEnv("notification-service")
	metrics := server.InitObservability(ctx, &opts)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := commondb.ConnectPostgres(cfg.Postgres, logger.Log, &models.NotificationLog{})
	if err != nil {
		logger.Log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	redisClient, err := commondb.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}

	emailSender, err := sender.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	if err != nil {
		logger.Log.Fatal("failed to init smtp sender", zap.Error(err))
	}

	repo := repository.NewNotificationRepository(db)
	notificationService, err := services.NewNotificationService(
		repo,
		clients.NewUserClient(cfg.AuthServiceURL, cfg.InternalAPIKey, cfg.UpstreamTimeout),
		emailSender,
		repository.NewRedisDeduper(redisClient, 24*time.Hour),
		metrics,
		services.Options{Attempts: cfg.SendAttempts, Backoff: cfg.RetryBackoff},
	)
	if err != nil {
		logger.Log.Fatal("failed to initialize notification service", zap.Error(err))
	}

	var (
		worker      runner
		closeSource func() error
	)
	switch cfg.Source {
	case "kafka":
		kc := consumer.NewKafkaConsumer(consumer.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopics, cfg.KafkaGroupID), notificationService)
		worker, closeSource = kc, kc.Close
	default:
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			logger.Log.Fatal("failed to load aws config", zap.Error(err))
		}
		worker = consumer.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL, notificationService)
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(workerCtx)
	}()

	stop := make(chan struct{})
	router := server.NewRouter(opts, stop)
	routes.RegisterNotificationRoutes(router, controllers.NewNotificationController(notificationService),
		auth.NewTokenManager(cfg.JWTSecret, 0),
		auth.NewRedisDenylist(redisClient),
	)

	server.Run(cfg.Port, router, func() {
		close(stop)
		stopWorker()
		wg.Wait()
		if closeSource != nil {
			if err := closeSource(); err != nil {
				logger.Log.Error("failed to close event source", zap.Error(err))
			}
		}
		if err := commondb.ClosePostgres(db); err != nil {
			logger.Log.Error("failed to close postgres", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("failed to close redis", zap.Error(err))
		}
	})
}
