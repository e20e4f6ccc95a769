package config

import (
	"context"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
	"github.com/yashrajoria/shopswift/services/common/events"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	JWTSecret     string
	InternalKey   string
	TokenTTL      time.Duration
	BcryptCost    int
	CookieDomain  string
	CookieSecure  bool
	Events        events.Config
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port:          common.GetEnv("PORT", "8081"),
		MongoURI:      common.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: common.GetEnv("MONGO_DATABASE", "shopswift_users"),
		RedisURL:      common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:     common.GetEnv("JWT_SECRET", ""),
		InternalKey:   common.GetEnv("INTERNAL_API_KEY", ""),
		TokenTTL:      common.GetEnvDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:    common.GetEnvInt("BCRYPT_COST", 10),
		CookieDomain:  common.GetEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  common.GetEnvBool("COOKIE_SECURE", true),
		Events: events.Config{
			Backend:      common.GetEnv("EVENTS_BACKEND", ""),
			SNSTopicArn:  common.GetEnv("SNS_USER_EVENTS_TOPIC_ARN", ""),
			KafkaBrokers: common.GetEnv("KAFKA_BROKERS", ""),
			KafkaTopic:   common.GetEnv("KAFKA_USER_EVENTS_TOPIC", "user-events"),
		},
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET":       &cfg.JWTSecret,
		"MONGO_URI":        &cfg.MongoURI,
		"REDIS_URL":        &cfg.RedisURL,
		"INTERNAL_API_KEY": &cfg.InternalKey,
	})
	if err != nil {
		return nil, err
	}

	return cfg, common.Require(map[string]string{"JWT_SECRET": cfg.JWTSecret})
}
