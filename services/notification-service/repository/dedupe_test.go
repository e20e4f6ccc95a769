package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	d := NewRedisDeduper(client, time.Hour)

	ok, err := d.Claim(ctx, "order_created:o1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Claim(ctx, "order_created:o1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("notify:order_created:o1"))

	require.NoError(t, d.Release(ctx, "order_created:o1"))
	ok, err = d.Claim(ctx, "order_created:o1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	ok, err = d.Claim(ctx, "order_created:o1")
	require.NoError(t, err)
	assert.True(t, ok)
}
