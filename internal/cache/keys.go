package cache

import (
	"context"
	"fmt"
	"time"
)

// Key formats for cached values.
const (
	FriendIDsKeyFormat = "friends:%d:ids"
	PostKeyFormat      = "post:%d"
	StatsKeyFormat     = "stats:%d"
	ProfileKeyFormat   = "profile:%d"
)

// TTLs for cached values.
const (
	FriendIDsTTL = 10 * time.Minute
	PostTTL      = 30 * time.Minute
	StatsTTL     = 5 * time.Minute
	ProfileTTL   = 10 * time.Minute
)

// FriendIDsKey caches the accepted-friend ID set of a profile.
func FriendIDsKey(userID uint) string {
	return fmt.Sprintf(FriendIDsKeyFormat, userID)
}

// PostKey caches a single post row.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyFormat, postID)
}

// StatsKey caches a profile's drink statistics.
func StatsKey(userID uint) string {
	return fmt.Sprintf(StatsKeyFormat, userID)
}

// ProfileKey caches a profile row.
func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyFormat, userID)
}

// Invalidate deletes keys. Failures only leave stale data until the TTL
// expires, so they are not reported.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if rdb := c.Client(); rdb != nil && len(keys) > 0 {
		rdb.Del(ctx, keys...)
	}
}

// InvalidateFriendships drops the cached friend sets of both parties.
func (c *Cache) InvalidateFriendships(ctx context.Context, a, b uint) {
	c.Invalidate(ctx, FriendIDsKey(a), FriendIDsKey(b), StatsKey(a), StatsKey(b))
}
