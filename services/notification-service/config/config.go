package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
	commondb "github.com/yashrajoria/shopswift/services/common/database"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Config struct {
	Port            string
	Postgres        commondb.PostgresConfig
	RedisURL        string
	JWTSecret       string
	InternalAPIKey  string
	AuthServiceURL  string
	UpstreamTimeout time.Duration

	// Source is "sqs" or "kafka".
	Source       string
	SQSQueueURL  string
	KafkaBrokers []string
	KafkaTopics  []string
	KafkaGroupID string

	SMTP         SMTPConfig
	SendAttempts int
	RetryBackoff time.Duration
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port: common.GetEnv("PORT", "8085"),
		Postgres: commondb.PostgresConfig{
			Host:     common.GetEnv("POSTGRES_HOST", "localhost"),
			Port:     common.GetEnv("POSTGRES_PORT", "5432"),
			User:     common.GetEnv("POSTGRES_USER", ""),
			Password: common.GetEnv("POSTGRES_PASSWORD", ""),
			DBName:   common.GetEnv("POSTGRES_DB", "shopswift_notifications"),
			SSLMode:  common.GetEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: common.GetEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		},
		RedisURL:        common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       common.GetEnv("JWT_SECRET", ""),
		InternalAPIKey:  common.GetEnv("INTERNAL_API_KEY", ""),
		AuthServiceURL:  common.GetEnv("AUTH_SERVICE_URL", "http://localhost:8081"),
		UpstreamTimeout: common.GetEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		Source:       strings.ToLower(common.GetEnv("NOTIFICATION_SOURCE", "sqs")),
		SQSQueueURL:  common.GetEnv("SQS_QUEUE_URL", common.GetEnv("NOTIFICATION_SQS_QUEUE_URL", "")),
		KafkaBrokers: splitList(common.GetEnv("KAFKA_BROKERS", "")),
		KafkaTopics:  splitList(common.GetEnv("KAFKA_NOTIFICATION_TOPICS", "order-events,payment-events,user-events")),
		KafkaGroupID: common.GetEnv("KAFKA_GROUP_ID", "notification-service"),

		SMTP: SMTPConfig{
			Host:     common.GetEnv("SMTP_HOST", ""),
			Port:     common.GetEnv("SMTP_PORT", "587"),
			Username: common.GetEnv("SMTP_USER", ""),
			Password: common.GetEnv("SMTP_PASS", ""),
			From:     common.GetEnv("SMTP_FROM", ""),
		},
		SendAttempts: common.GetEnvInt("NOTIFICATION_SEND_ATTEMPTS", 3),
		RetryBackoff: common.GetEnvDuration("NOTIFICATION_RETRY_BACKOFF", time.Second),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET":        &cfg.JWTSecret,
		"INTERNAL_API_KEY":  &cfg.InternalAPIKey,
		"POSTGRES_PASSWORD": &cfg.Postgres.Password,
		"SMTP_PASS":         &cfg.SMTP.Password,
	})
	if err != nil {
		return nil, err
	}

	required := map[string]string{
		"JWT_SECRET":        cfg.JWTSecret,
		"INTERNAL_API_KEY":  cfg.InternalAPIKey,
		"POSTGRES_USER":     cfg.Postgres.User,
		"POSTGRES_PASSWORD": cfg.Postgres.Password,
		"SMTP_HOST":         cfg.SMTP.Host,
		"SMTP_USER":         cfg.SMTP.Username,
		"SMTP_PASS":         cfg.SMTP.Password,
	}
	switch cfg.Source {
	case "sqs":
		required["SQS_QUEUE_URL"] = cfg.SQSQueueURL
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka source requires KAFKA_BROKERS")
		}
	default:
		return nil, fmt.Errorf("unknown NOTIFICATION_SOURCE %q", cfg.Source)
	}

	return cfg, common.Require(required)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
