package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	Items      []string `json:"items"`
	NextCursor string   `json:"nextCursor"`
}

func setupCache(t *testing.T) (*FeedCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFeedCache(client), mr
}

func TestFeedCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	var miss testPage
	assert.False(t, c.GetPublicFirstPage(ctx, &miss))

	c.SetPublicFirstPage(ctx, testPage{Items: []string{"p1", "p2"}, NextCursor: "abc"})

	var hit testPage
	require.True(t, c.GetPublicFirstPage(ctx, &hit))
	assert.Equal(t, []string{"p1", "p2"}, hit.Items)
	assert.Equal(t, "abc", hit.NextCursor)
}

func TestFeedCacheInvalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	c.SetPublicFirstPage(ctx, testPage{Items: []string{"p1"}})
	c.Invalidate(ctx)

	var page testPage
	assert.False(t, c.GetPublicFirstPage(ctx, &page))
}

func TestFeedCacheExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.SetPublicFirstPage(ctx, testPage{Items: []string{"p1"}})
	mr.FastForward(feedTTL * 2)

	var page testPage
	assert.False(t, c.GetPublicFirstPage(ctx, &page))
}
