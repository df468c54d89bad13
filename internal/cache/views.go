package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shreyea/write/internal/observability"
)

// View cache keys. A "view" is a server-rendered page payload that gets
// invalidated when the data feeding it changes. Profile views carry the
// viewer in the key because like state is rendered per viewer.
const (
	FeedViewKeyPrefix     = "view:feed:user:%d"
	ProfileViewKeyPrefix  = "view:profile:%s:viewer:%d"
	FriendsViewKeyPrefix  = "view:friends:user:%d"
	RequestsViewKeyPrefix = "view:requests:user:%d"
	UserKeyPrefix         = "user:%d"
)

const (
	FeedViewTTL     = 30 * time.Second
	ProfileViewTTL  = 1 * time.Minute
	FriendsViewTTL  = 2 * time.Minute
	RequestsViewTTL = 1 * time.Minute
	UserTTL         = 5 * time.Minute
)

func FeedViewKey(userID uint) string {
	return fmt.Sprintf(FeedViewKeyPrefix, userID)
}

// ProfileViewKey is keyed on the lowercased username, matching the
// case-insensitive profile lookup.
func ProfileViewKey(username string, viewerID uint) string {
	return fmt.Sprintf(ProfileViewKeyPrefix, strings.ToLower(username), viewerID)
}

func FriendsViewKey(userID uint) string {
	return fmt.Sprintf(FriendsViewKeyPrefix, userID)
}

func RequestsViewKey(userID uint) string {
	return fmt.Sprintf(RequestsViewKeyPrefix, userID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside implements the cache-aside pattern: return the cached JSON value at
// key, or call fill, cache its result for ttl, and return it. Cache failures
// degrade to calling fill directly.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, fill func() (T, error)) (T, error) {
	var zero T
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Result()
	if err == nil {
		var cached T
		if unmarshalErr := json.Unmarshal([]byte(raw), &cached); unmarshalErr == nil {
			return cached, nil
		}
		// Corrupt entry, drop it and fall through to fill.
		client.Del(ctx, key)
	} else if err != redis.Nil {
		return fill()
	}

	value, err := fill()
	if err != nil {
		return zero, err
	}

	if data, marshalErr := json.Marshal(value); marshalErr == nil {
		client.Set(ctx, key, data, ttl)
	}

	return value, nil
}

// Invalidate removes a single key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser removes the cached record for a user.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateFeedViews removes every cached feed view. Feeds aggregate posts
// across users, so a single new post can change many users' feeds.
func InvalidateFeedViews(ctx context.Context) {
	if client == nil {
		return
	}
	observability.RecordViewInvalidation("feed")
	iter := client.Scan(ctx, 0, "view:feed:user:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateProfileView removes every viewer's cached profile view for a
// username.
func InvalidateProfileView(ctx context.Context, username string) {
	if client == nil {
		return
	}
	observability.RecordViewInvalidation("profile")
	pattern := fmt.Sprintf("view:profile:%s:viewer:*", strings.ToLower(username))
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateFriendsView removes the cached friends view for a user.
func InvalidateFriendsView(ctx context.Context, userID uint) {
	observability.RecordViewInvalidation("friends")
	Invalidate(ctx, FriendsViewKey(userID))
}

// InvalidateRequestsView removes the cached pending-requests view for a user.
func InvalidateRequestsView(ctx context.Context, userID uint) {
	observability.RecordViewInvalidation("requests")
	Invalidate(ctx, RequestsViewKey(userID))
}
