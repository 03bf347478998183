package cache

import (
	"context"
	"errors"
	"time"

	dom "guestbook/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyList = "guestbook:entries"

// EntryCache caches the full entry list in Redis.
type EntryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewEntryCache returns a new EntryCache.
func NewEntryCache(rdb *redis.Client, ttl time.Duration) *EntryCache {
	return &EntryCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list, or nil on a miss. A cached empty list is
// returned as a non-nil empty slice.
func (c *EntryCache) GetList(ctx context.Context) ([]dom.Entry, error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Entry{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *EntryCache) SetList(ctx context.Context, list []dom.Entry) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyList, b, c.ttl).Err()
}

// Invalidate drops the cached list; called after every write.
func (c *EntryCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyList).Err()
}
