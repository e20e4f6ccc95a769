package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/logger"
)

// LoadDotEnv loads .env when present; a missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file loaded", zap.Error(err))
	}
}

func GetEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func GetEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func GetEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// Require returns an error naming every empty value.
func Require(values map[string]string) error {
	var missing []string
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SecretFetcher is satisfied by *awspkg.SecretsClient.
type SecretFetcher interface {
	GetSecretJSON(ctx context.Context, name string) (map[string]string, error)
}

// OverlaySecrets replaces targets with values from a JSON secret when
// AWS_USE_SECRETS=true. Keys absent from the secret keep their env value.
func OverlaySecrets(ctx context.Context, secretName string, targets map[string]*string) error {
	if !GetEnvBool("AWS_USE_SECRETS", false) || secretName == "" {
		return nil
	}

	cfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		return err
	}
	return ApplySecrets(ctx, awspkg.NewSecretsClient(cfg), secretName, targets)
}

func ApplySecrets(ctx context.Context, fetcher SecretFetcher, secretName string, targets map[string]*string) error {
	values, err := fetcher.GetSecretJSON(ctx, secretName)
	if err != nil {
		return fmt.Errorf("load secrets %s: %w", secretName, err)
	}

	applied := 0
	for key, dst := range targets {
		if v, ok := values[key]; ok && v != "" {
			*dst = v
			applied++
		}
	}
	logger.Log.Info("applied secrets overlay", zap.String("secret", secretName), zap.Int("keys", applied))
	return nil
}
