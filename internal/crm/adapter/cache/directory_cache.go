package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crm-mirror/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// DirectoryCache is a short-TTL Redis cache for remote directory lookups
// (contacts, users, tags). Directory data changes rarely but is requested on
// every board render, so a small TTL takes most of the read load off the
// remote API. A nil *DirectoryCache is valid and caches nothing.
type DirectoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewDirectoryCache wraps a Redis client. A nil client returns a nil cache,
// which callers can use unconditionally.
func NewDirectoryCache(client *redis.Client, ttl time.Duration, log logger.Logger) *DirectoryCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &DirectoryCache{
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("cache.directory"),
	}
}

func directoryKey(locationID, kind, query string) string {
	return fmt.Sprintf("crm:dir:%s:%s:%s", locationID, kind, query)
}

// Get loads a cached directory response into out. Returns false on miss,
// decode failure, or Redis trouble; a broken cache must never fail a read.
func (c *DirectoryCache) Get(ctx context.Context, locationID, kind, query string, out interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, directoryKey(locationID, kind, query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithFields(map[string]interface{}{"kind": kind, "error": err.Error()}).Warn("directory cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.WithFields(map[string]interface{}{"kind": kind, "error": err.Error()}).Warn("directory cache entry corrupt")
		return false
	}
	return true
}

// Set stores a directory response. Failures are logged and swallowed.
func (c *DirectoryCache) Set(ctx context.Context, locationID, kind, query string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, directoryKey(locationID, kind, query), raw, c.ttl).Err(); err != nil {
		c.logger.WithFields(map[string]interface{}{"kind": kind, "error": err.Error()}).Warn("directory cache write failed")
	}
}
