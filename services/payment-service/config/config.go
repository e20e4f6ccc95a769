package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/payment-service/models"
)

type Config struct {
	Port            string
	Postgres        commondb.PostgresConfig
	RedisURL        string
	JWTSecret       string
	InternalAPIKey  string
	OrderServiceURL string
	UpstreamTimeout time.Duration

	Gateway           string
	RazorpayBaseURL   string
	RazorpayKeyID     string
	RazorpayKeySecret string
	StripeSecretKey   string
	StripePublicKey   string
	StripeWebhookKey  string

	Currency        string
	MinorUnitFactor float64

	Events events.Config
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port: common.GetEnv("PORT", "8084"),
		Postgres: commondb.PostgresConfig{
			Host:     common.GetEnv("POSTGRES_HOST", "localhost"),
			Port:     common.GetEnv("POSTGRES_PORT", "5432"),
			User:     common.GetEnv("POSTGRES_USER", ""),
			Password: common.GetEnv("POSTGRES_PASSWORD", ""),
			DBName:   common.GetEnv("POSTGRES_DB", "shopswift_payments"),
			SSLMode:  common.GetEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: common.GetEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		},
		RedisURL:        common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       common.GetEnv("JWT_SECRET", ""),
		InternalAPIKey:  common.GetEnv("INTERNAL_API_KEY", ""),
		OrderServiceURL: common.GetEnv("ORDER_SERVICE_URL", "http://localhost:8083"),
		UpstreamTimeout: common.GetEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		Gateway:           strings.ToLower(common.GetEnv("PAYMENT_GATEWAY", models.ProviderRazorpay)),
		RazorpayBaseURL:   common.GetEnv("RAZORPAY_BASE_URL", ""),
		RazorpayKeyID:     common.GetEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: common.GetEnv("RAZORPAY_KEY_SECRET", ""),
		StripeSecretKey:   common.GetEnv("STRIPE_API_KEY", ""),
		StripePublicKey:   common.GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
		StripeWebhookKey:  common.GetEnv("STRIPE_WEBHOOK_SECRET", ""),

		Currency:        strings.ToUpper(common.GetEnv("PAYMENT_CURRENCY", "INR")),
		MinorUnitFactor: common.GetEnvFloat("PAYMENT_MINOR_UNIT_FACTOR", 100),

		Events: events.Config{
			Backend:      common.GetEnv("EVENTS_BACKEND", ""),
			SNSTopicArn:  common.GetEnv("SNS_PAYMENT_EVENTS_TOPIC_ARN", ""),
			KafkaBrokers: common.GetEnv("KAFKA_BROKERS", ""),
			KafkaTopic:   common.GetEnv("KAFKA_PAYMENT_EVENTS_TOPIC", "payment-events"),
		},
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET":            &cfg.JWTSecret,
		"INTERNAL_API_KEY":      &cfg.InternalAPIKey,
		"POSTGRES_PASSWORD":     &cfg.Postgres.Password,
		"RAZORPAY_KEY_SECRET":   &cfg.RazorpayKeySecret,
		"STRIPE_API_KEY":        &cfg.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": &cfg.StripeWebhookKey,
	})
	if err != nil {
		return nil, err
	}

	required := map[string]string{
		"JWT_SECRET":        cfg.JWTSecret,
		"INTERNAL_API_KEY":  cfg.InternalAPIKey,
		"POSTGRES_USER":     cfg.Postgres.User,
		"POSTGRES_PASSWORD": cfg.Postgres.Password,
	}
	switch cfg.Gateway {
	case models.ProviderRazorpay:
		required["RAZORPAY_KEY_ID"] = cfg.RazorpayKeyID
		required["RAZORPAY_KEY_SECRET"] = cfg.RazorpayKeySecret
	case models.ProviderStripe:
		required["STRIPE_API_KEY"] = cfg.StripeSecretKey
		required["STRIPE_WEBHOOK_SECRET"] = cfg.StripeWebhookKey
	default:
		return nil, fmt.Errorf("unknown PAYMENT_GATEWAY %q", cfg.Gateway)
	}
	if cfg.MinorUnitFactor <= 0 {
		return nil, fmt.Errorf("PAYMENT_MINOR_UNIT_FACTOR must be positive")
	}

	return cfg, common.Require(required)
}
