// Package cache keeps computed availability in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "frontdesk:availability"

// Cache is a JSON read-through cache. A nil *Cache or a zero TTL disables it.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// New wraps rdb. A nil client or a zero ttl gives a disabled cache.
func New(rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Key builds the cache key of one availability computation. The store
// revision is part of the key, so any write makes older entries unreachable.
// variant identifies the channel mappings the result was aggregated with.
func Key(revision int64, start, end time.Time, variant string) string {
	return fmt.Sprintf("%s:%d:%s:%s:%s", keyPrefix, revision,
		start.Format("2006-01-02"), end.Format("2006-01-02"), variant)
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get decodes the cached value into out and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
			metrics.IncCache("error")
			return false
		}
		metrics.IncCache("miss")
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache entry is corrupt")
		metrics.IncCache("error")
		return false
	}
	metrics.IncCache("hit")
	return true
}

// Set stores val. Failures are logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		metrics.IncCache("error")
	}
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
