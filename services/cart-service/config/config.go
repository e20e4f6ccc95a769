package config

import (
	"context"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
)

type Config struct {
	Port              string
	RedisURL          string
	JWTSecret         string
	ProductServiceURL string
	UpstreamTimeout   time.Duration
	CartTTL           time.Duration
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port:              common.GetEnv("PORT", "8086"),
		RedisURL:          common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:         common.GetEnv("JWT_SECRET", ""),
		ProductServiceURL: common.GetEnv("PRODUCT_SERVICE_URL", "http://localhost:8082"),
		UpstreamTimeout:   common.GetEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		CartTTL:           common.GetEnvDuration("CART_TTL", 7*24*time.Hour),
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET": &cfg.JWTSecret,
		"REDIS_URL":  &cfg.RedisURL,
	})
	if err != nil {
		return nil, err
	}

	return cfg, common.Require(map[string]string{"JWT_SECRET": cfg.JWTSecret})
}
