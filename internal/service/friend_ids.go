package service

import (
	"context"

	"brewlog/internal/cache"
	"brewlog/internal/repository"
)

// friendIDSet returns the accepted-friend IDs of userID, served from the
// cache when possible. Anonymous viewers have no friends.
func friendIDSet(ctx context.Context, c *cache.Cache, repo repository.FriendRepository, userID uint) (map[uint]struct{}, error) {
	set := make(map[uint]struct{})
	if userID == 0 {
		return set, nil
	}

	var ids []uint
	err := c.Aside(ctx, cache.FriendIDsKey(userID), &ids, cache.FriendIDsTTL, func() error {
		var err error
		ids, err = repo.FriendIDs(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
