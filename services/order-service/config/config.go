package config

import (
	"context"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
	"github.com/yashrajoria/shopswift/services/common/events"
)

type Config struct {
	Port              string
	MongoURI          string
	MongoDatabase     string
	RedisURL          string
	JWTSecret         string
	InternalAPIKey    string
	ProductServiceURL string
	UpstreamTimeout   time.Duration
	Events            events.Config
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port:              common.GetEnv("PORT", "8083"),
		MongoURI:          common.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     common.GetEnv("MONGO_DATABASE", "shopswift_orders"),
		RedisURL:          common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:         common.GetEnv("JWT_SECRET", ""),
		InternalAPIKey:    common.GetEnv("INTERNAL_API_KEY", ""),
		ProductServiceURL: common.GetEnv("PRODUCT_SERVICE_URL", "http://localhost:8082"),
		UpstreamTimeout:   common.GetEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		Events: events.Config{
			Backend:      common.GetEnv("EVENTS_BACKEND", ""),
			SNSTopicArn:  common.GetEnv("SNS_ORDER_EVENTS_TOPIC_ARN", ""),
			KafkaBrokers: common.GetEnv("KAFKA_BROKERS", ""),
			KafkaTopic:   common.GetEnv("KAFKA_ORDER_EVENTS_TOPIC", "order-events"),
		},
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET":       &cfg.JWTSecret,
		"MONGO_URI":        &cfg.MongoURI,
		"INTERNAL_API_KEY": &cfg.InternalAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return cfg, common.Require(map[string]string{
		"JWT_SECRET":       cfg.JWTSecret,
		"INTERNAL_API_KEY": cfg.InternalAPIKey,
	})
}
