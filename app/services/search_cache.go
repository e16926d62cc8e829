package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/redis/go-redis/v9"
)

// SearchCache caches provider responses per (provider, origin, date pair)
// so repeated runs within the TTL don't hammer the upstream APIs.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]*models.Offer, bool)
	Set(ctx context.Context, key string, offers []*models.Offer)
}

// SearchCacheKey builds the cache key for one provider call
func SearchCacheKey(provider, origin string, departDate, returnDate time.Time) string {
	return fmt.Sprintf("search:%s:%s:%s:%s",
		provider, origin, departDate.Format("2006-01-02"), returnDate.Format("2006-01-02"))
}

// RedisSearchCache is the redis-backed implementation
type RedisSearchCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisSearchCache creates a search cache over the given redis client
func NewRedisSearchCache(rc *redis.Client, ttl time.Duration) *RedisSearchCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RedisSearchCache{rc: rc, ttl: ttl}
}

func (c *RedisSearchCache) Get(ctx context.Context, key string) ([]*models.Offer, bool) {
	data, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var offers []*models.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false
	}
	return offers, true
}

func (c *RedisSearchCache) Set(ctx context.Context, key string, offers []*models.Offer) {
	data, err := json.Marshal(offers)
	if err != nil {
		return
	}
	// Cache failures are invisible to the pipeline; the next run refetches.
	_ = c.rc.Set(ctx, key, data, c.ttl).Err()
}

// NoopSearchCache is used when caching is disabled
type NoopSearchCache struct{}

func (NoopSearchCache) Get(ctx context.Context, key string) ([]*models.Offer, bool) { return nil, false }
func (NoopSearchCache) Set(ctx context.Context, key string, offers []*models.Offer) {}
