package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
)

var _ port.ChartCachePort = (*ChartCache)(nil)

const busyValue = "1"

// ChartCache stores chart entries, last-update stamps and busy markers in
// Redis. Entries are written without expiry so stale series stay available
// as a fallback tier; only the busy marker carries a TTL.
type ChartCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewChartCache(client *redis.Client, logger *slog.Logger) *ChartCache {
	return &ChartCache{
		client: client,
		logger: logger,
	}
}

// Ping checks the connection to the Redis server.
func (c *ChartCache) Ping(ctx context.Context) string {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Sprintf("down: %v", err)
	}
	return "up"
}

func (c *ChartCache) GetEntry(ctx context.Context, key string) (*domain.CacheEntry, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, nil
}

func (c *ChartCache) SetEntry(ctx context.Context, key string, entry domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, 0).Err()
}

func (c *ChartCache) GetLastUpdate(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		c.logger.Warn("unparsable last update value, treating as absent",
			slog.String("key", key), slog.String("value", val))
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (c *ChartCache) SetLastUpdate(ctx context.Context, key string, at time.Time) error {
	return c.client.Set(ctx, key, at.Format(time.RFC3339Nano), 0).Err()
}

func (c *ChartCache) DeleteLastUpdate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *ChartCache) IsBusy(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetBusy writes the marker with a plain SET. The check-then-set sequence
// above it is deliberately not atomic; the marker is advisory
// de-duplication, not a lock.
func (c *ChartCache) SetBusy(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Set(ctx, key, busyValue, ttl).Err()
}

func (c *ChartCache) ClearBusy(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *ChartCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decode cached value %s: %w", key, err)
	}
	return true, nil
}

func (c *ChartCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
