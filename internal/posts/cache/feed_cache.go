package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	publicFeedKey = "feed:public:first" // first public page, anonymous viewers only
	feedTTL       = 60 * time.Second
)

// FeedCache keeps the anonymous first feed page in Redis. Misses and Redis
// failures fall through to Firestore; the cache is never authoritative.
type FeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) *FeedCache {
	return &FeedCache{client: client}
}

// GetPublicFirstPage returns the cached page bytes, or false on miss.
func (c *FeedCache) GetPublicFirstPage(ctx context.Context, dest interface{}) bool {
	data, err := c.client.Get(ctx, publicFeedKey).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("feed cache get failed: %v", err)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("feed cache decode failed: %v", err)
		return false
	}
	return true
}

func (c *FeedCache) SetPublicFirstPage(ctx context.Context, page interface{}) {
	data, err := json.Marshal(page)
	if err != nil {
		log.Printf("feed cache encode failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, publicFeedKey, data, feedTTL).Err(); err != nil {
		log.Printf("feed cache set failed: %v", err)
	}
}

// Invalidate drops the cached page. Called after every post mutation.
func (c *FeedCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, publicFeedKey).Err(); err != nil {
		log.Printf("feed cache invalidate failed: %v", err)
	}
}
