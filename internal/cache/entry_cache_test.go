package cache

import (
	"context"
	"os"
	"testing"
	"time"

	dom "guestbook/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to REDIS_TEST_ADDR and uses DB 15.
func newTestCache(t *testing.T) *EntryCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	return NewEntryCache(rdb, time.Minute)
}

func Test_Entry_Cache(t *testing.T) {
	req := require.New(t)
	c := newTestCache(t)
	ctx := context.Background()

	list, err := c.GetList(ctx)
	req.NoError(err)
	req.Nil(list, "miss")

	req.NoError(c.SetList(ctx, []dom.Entry{}))
	list, err = c.GetList(ctx)
	req.NoError(err)
	req.NotNil(list)
	req.Empty(list)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req.NoError(c.SetList(ctx, []dom.Entry{{ID: 1, Name: "Ada", Message: "Hello", CreatedAt: at}}))
	list, err = c.GetList(ctx)
	req.NoError(err)
	req.Len(list, 1)
	req.Equal("Ada", list[0].Name)
	req.True(at.Equal(list[0].CreatedAt))

	req.NoError(c.Invalidate(ctx))
	list, err = c.GetList(ctx)
	req.NoError(err)
	req.Nil(list)
}
