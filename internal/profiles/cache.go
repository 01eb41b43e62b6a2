package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved profiles per user for a short TTL. Profiles change
// rarely; the only hard requirement is invalidation when a user's profile
// code changes, which the users service triggers through Invalidate.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a resolver cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("profiles:resolved:%d", userID)
}

// Get returns the cached profile for a user, or (nil, false) on miss.
func (c *Cache) Get(ctx context.Context, userID int64) (*AccessProfile, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var p AccessProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Put caches a resolved profile.
func (c *Cache) Put(ctx context.Context, userID int64, p *AccessProfile) {
	if c == nil || c.client == nil || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(userID), data, c.ttl).Err()
}

// Invalidate drops the cached resolution for a user.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
