package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache is a Redis-backed, content-addressable cache for retrieval and query
// results. It avoids redundant LLM calls when the same request parameters
// have already been answered. All failures are absorbed as cache misses so a
// broken store never fails the caller.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	log     *logrus.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, enabled bool, log *logrus.Logger) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		enabled: enabled && client != nil,
		log:     log,
	}
}

// CacheKey derives a deterministic key from the operation prefix and the full
// request parameter set: sha256 of the sorted-key JSON encoding, truncated.
// Go's encoding/json marshals map keys in sorted order, which keeps the key
// stable across processes.
func CacheKey(prefix string, params map[string]any) string {
	serialized, err := json.Marshal(params)
	if err != nil {
		serialized = []byte(fmt.Sprintf("%v", params))
	}
	sum := sha256.Sum256(serialized)
	return fmt.Sprintf("rag_cache:%s:%s", prefix, hex.EncodeToString(sum[:8]))
}

// Get looks up a cached result and unmarshals it into dest. Returns false on
// miss, disabled cache or any store error.
func (c *Cache) Get(ctx context.Context, prefix string, params map[string]any, dest any) bool {
	if c == nil || !c.enabled {
		return false
	}
	key := CacheKey(prefix, params)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.log.Debugf("rag cache miss: %s", key)
		return false
	}
	if err != nil {
		c.log.Warnf("rag cache read failed (non-fatal): %v", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.log.Warnf("rag cache entry corrupt, treating as miss: %v", err)
		return false
	}
	c.log.Debugf("rag cache hit: %s", key)
	return true
}

// Set stores a result under the derived key with the configured TTL. Store
// errors are logged and swallowed.
func (c *Cache) Set(ctx context.Context, prefix string, params map[string]any, result any) {
	if c == nil || !c.enabled {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.log.Warnf("rag cache marshal failed (non-fatal): %v", err)
		return
	}
	key := CacheKey(prefix, params)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("rag cache write failed (non-fatal): %v", err)
		return
	}
	c.log.Debugf("rag cache set: %s (ttl=%s)", key, c.ttl)
}
