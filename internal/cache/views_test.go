package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAsideFillsAndCaches(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fill := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := Aside(ctx, "view:test", FeedViewTTL, fill)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)

	// Second lookup comes from the cache.
	got, err = Aside(ctx, "view:test", FeedViewTTL, fill)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)
}

func TestAsideFillError(t *testing.T) {
	setupMiniredis(t)

	_, err := Aside(context.Background(), "view:test", FeedViewTTL, func() (int, error) {
		return 0, errors.New("db down")
	})
	assert.Error(t, err)
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)

	got, err := Aside(context.Background(), "view:test", FeedViewTTL, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestAsideDropsCorruptEntry(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("view:test", "not json{"))

	got, err := Aside(context.Background(), "view:test", FeedViewTTL, func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestInvalidateFeedViews(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(FeedViewKey(1), "x"))
	require.NoError(t, mr.Set(FeedViewKey(2), "y"))
	require.NoError(t, mr.Set(ProfileViewKey("alice", 1), "z"))

	InvalidateFeedViews(ctx)

	assert.False(t, mr.Exists(FeedViewKey(1)))
	assert.False(t, mr.Exists(FeedViewKey(2)))
	assert.True(t, mr.Exists(ProfileViewKey("alice", 1)))
}

func TestInvalidateProfileViewClearsAllViewers(t *testing.T) {
	mr := setupMiniredis(t)

	require.NoError(t, mr.Set(ProfileViewKey("alice", 1), "a"))
	require.NoError(t, mr.Set(ProfileViewKey("Alice", 2), "b"))
	require.NoError(t, mr.Set(ProfileViewKey("bob", 1), "c"))

	InvalidateProfileView(context.Background(), "alice")

	assert.False(t, mr.Exists(ProfileViewKey("alice", 1)))
	assert.False(t, mr.Exists(ProfileViewKey("alice", 2)))
	assert.True(t, mr.Exists(ProfileViewKey("bob", 1)))
}

func TestInvalidateRequestsView(t *testing.T) {
	mr := setupMiniredis(t)

	require.NoError(t, mr.Set(RequestsViewKey(4), "x"))
	require.NoError(t, mr.Set(FriendsViewKey(4), "y"))

	InvalidateRequestsView(context.Background(), 4)

	assert.False(t, mr.Exists(RequestsViewKey(4)))
	assert.True(t, mr.Exists(FriendsViewKey(4)))
}
