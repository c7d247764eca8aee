package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Counts map[string][]int `json:"counts"`
}

func setup(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	logger := zerolog.New(io.Discard)
	return New(rdb, ttl, &logger), mr
}

func TestKey(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "frontdesk:availability:7:2025-01-01:2025-01-31:abc", Key(7, start, end, "abc"))
	assert.NotEqual(t, Key(7, start, end, "abc"), Key(8, start, end, "abc"))
}

func TestCache_RoundTrip(t *testing.T) {
	c, mr := setup(t, time.Minute)
	ctx := context.Background()

	var got entry
	assert.False(t, c.Get(ctx, "k", &got))

	c.Set(ctx, "k", entry{Counts: map[string][]int{"Deluxe": {1, 2}}})
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, []int{1, 2}, got.Counts["Deluxe"])

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestCache_Corrupt(t *testing.T) {
	c, mr := setup(t, time.Minute)
	require.NoError(t, mr.Set("k", "{not json"))
	var got entry
	assert.False(t, c.Get(context.Background(), "k", &got))
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	var nilCache *Cache
	nilCache.Set(ctx, "k", entry{})
	assert.False(t, nilCache.Get(ctx, "k", &entry{}))
	assert.NoError(t, nilCache.Ping(ctx))

	c, mr := setup(t, 0)
	c.Set(ctx, "k", entry{})
	assert.False(t, mr.Exists("k"))
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := setup(t, time.Minute)
	mr.Close()
	var got entry
	assert.False(t, c.Get(context.Background(), "k", &got))
	assert.Error(t, c.Ping(context.Background()))
}
