package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupePrefix = "notify:"

// RedisDeduper remembers processed events so redelivered messages are not mailed twice.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// Claim reports whether id was unclaimed and is now held by the caller.
func (d *RedisDeduper) Claim(ctx context.Context, id string) (bool, error) {
	return d.client.SetNX(ctx, dedupePrefix+id, "1", d.ttl).Result()
}

// Release frees id so a later delivery can process it again.
func (d *RedisDeduper) Release(ctx context.Context, id string) error {
	return d.client.Del(ctx, dedupePrefix+id).Err()
}
