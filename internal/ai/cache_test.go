package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Hour)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "science|easy|s1|A|s1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	want := testQuestion("s1")
	require.NoError(t, cache.Set(ctx, "science|easy|s1|A|s1", want))

	got, err := cache.Get(ctx, "science|easy|s1|A|s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	// Entries expire with the configured TTL.
	mr.FastForward(2 * time.Hour)
	expired, err := cache.Get(ctx, "science|easy|s1|A|s1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}
