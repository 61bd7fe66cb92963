package crawler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageTTL     = 6 * time.Hour
	cachePrefix = "page:"
)

// PageCache keeps raw page HTML in Redis so repeated runs inside the TTL do
// not re-hit the site. All failures degrade to a cache miss.
type PageCache struct {
	Client *redis.Client
}

func NewPageCache(redisURL string) *PageCache {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil
	}
	return &PageCache{Client: redis.NewClient(opt)}
}

func (c *PageCache) Get(ctx context.Context, url string) (string, bool) {
	val, err := c.Client.Get(ctx, cachePrefix+url).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *PageCache) Set(ctx context.Context, url, html string) {
	_ = c.Client.Set(ctx, cachePrefix+url, html, pageTTL).Err()
}
