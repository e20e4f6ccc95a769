package config

import (
	"context"
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	JWTSecret     string
	CacheTTL      time.Duration

	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
	MaxUploadBytes  int64
}

func Load(ctx context.Context) (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port:            common.GetEnv("PORT", "8082"),
		MongoURI:        common.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   common.GetEnv("MONGO_DATABASE", "shopswift_products"),
		RedisURL:        common.GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       common.GetEnv("JWT_SECRET", ""),
		CacheTTL:        common.GetEnvDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		S3Bucket:        common.GetEnv("AWS_S3_BUCKET", ""),
		S3Prefix:        common.GetEnv("AWS_S3_PREFIX", "products/"),
		S3PublicBaseURL: common.GetEnv("AWS_S3_PUBLIC_URL", ""),
		MaxUploadBytes:  int64(common.GetEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}

	err := common.OverlaySecrets(ctx, common.GetEnv("AWS_SECRETS_NAME", ""), map[string]*string{
		"JWT_SECRET": &cfg.JWTSecret,
		"MONGO_URI":  &cfg.MongoURI,
		"REDIS_URL":  &cfg.RedisURL,
	})
	if err != nil {
		return nil, err
	}

	return cfg, common.Require(map[string]string{"JWT_SECRET": cfg.JWTSecret})
}
