package source

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedStrategy keeps successful fetch windows in a small TTL'd LRU, so a
// burst of requests about the same target does not hammer a rate-limited
// upstream. Only upstream activity is cached here; assessment results never
// are. Failures are not cached either: the next request gets a fresh try.
type cachedStrategy struct {
	next  Strategy
	cache *expirable.LRU[string, []RawPost]
}

func newCachedStrategy(next Strategy, size int, ttl time.Duration) *cachedStrategy {
	return &cachedStrategy{
		next:  next,
		cache: expirable.NewLRU[string, []RawPost](size, nil, ttl),
	}
}

func (c *cachedStrategy) Name() string { return c.next.Name() + "+cache" }

func (c *cachedStrategy) FetchRecentActivity(ctx context.Context, handle string, limit int) ([]RawPost, error) {
	key := fmt.Sprintf("%s/%d", handle, limit)
	if posts, ok := c.cache.Get(key); ok {
		return posts, nil
	}
	posts, err := c.next.FetchRecentActivity(ctx, handle, limit)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, posts)
	return posts, nil
}
