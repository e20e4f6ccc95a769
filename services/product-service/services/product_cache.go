package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/product-service/models"
)

const productCachePrefix = "product:detail:"

// ProductCache keeps single-product reads in redis. Cache failures are logged
// and treated as misses.
type ProductCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{redis: client, ttl: ttl}
}

func (pc *ProductCache) Get(ctx context.Context, id string) (*models.Product, bool) {
	if pc == nil {
		return nil, false
	}
	data, err := pc.redis.Get(ctx, productCachePrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "product cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn(ctx, "failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (pc *ProductCache) Set(ctx context.Context, p *models.Product) {
	if pc == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := pc.redis.Set(ctx, productCachePrefix+p.ID, data, pc.ttl).Err(); err != nil {
		logger.Warn(ctx, "failed to cache product", zap.String("id", p.ID), zap.Error(err))
	}
}

func (pc *ProductCache) Invalidate(ctx context.Context, id string) {
	if pc == nil {
		return
	}
	if err := pc.redis.Del(ctx, productCachePrefix+id).Err(); err != nil {
		logger.Warn(ctx, "failed to invalidate product cache", zap.String("id", id), zap.Error(err))
	}
}
