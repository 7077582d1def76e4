// Package snapshot keeps the last server-confirmed copy of each entity
// collection in Redis. Stores hydrate from it at startup so the presentation
// layer has stale-but-consistent data before the first sync completes; only
// collections that came back from a successful full fetch are ever written.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// Cache wraps a Redis client and provides typed save/load/delete for
// collection snapshots.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 24-hour TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// key returns the Redis key for the given collection name.
func key(collection string) string {
	return "tripsync:collection:" + collection
}

// Save stores the collection snapshot with the configured TTL.
func (c *Cache) Save(ctx context.Context, collection string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", collection, err)
	}

	if err := c.client.Set(ctx, key(collection), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot save for %s: %w", collection, err)
	}

	return nil
}

// Load retrieves a collection snapshot into dst.
// Returns false, nil on a miss (not an error).
func (c *Cache) Load(ctx context.Context, collection string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key(collection)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("snapshot load for %s: %w", collection, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("unmarshaling snapshot for %s: %w", collection, err)
	}

	return true, nil
}

// Delete removes the snapshot for the given collection.
func (c *Cache) Delete(ctx context.Context, collection string) error {
	if err := c.client.Del(ctx, key(collection)).Err(); err != nil {
		return fmt.Errorf("snapshot delete for %s: %w", collection, err)
	}
	return nil
}

// Connect parses redisURL, creates a client, and verifies connectivity with
// a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}
