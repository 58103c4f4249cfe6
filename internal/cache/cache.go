// Package cache provides a small Redis backed cache for search oracle
// responses. A broken or absent Redis degrades to cache misses, never to
// errors surfaced to the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "search:" + hex.EncodeToString(sum[:])
}

// Get returns the cached response body for a query. The second return is
// false on any miss, including Redis being unreachable.
func (c *SearchCache) Get(ctx context.Context, query string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, c.key(query)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a response body under the query hash. Write failures are
// dropped.
func (c *SearchCache) Set(ctx context.Context, query, body string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, c.key(query), body, c.ttl).Err()
}
