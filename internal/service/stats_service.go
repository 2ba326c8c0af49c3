package service

import (
	"context"

	"brewlog/internal/cache"
	"brewlog/internal/feed"
	"brewlog/internal/models"
	"brewlog/internal/repository"
)

// StatsService serves per-profile drink statistics.
type StatsService struct {
	statsRepo   repository.StatsRepository
	friendRepo  repository.FriendRepository
	profileRepo repository.ProfileRepository
	cache       *cache.Cache
}

// NewStatsService returns a new StatsService. c may be nil.
func NewStatsService(statsRepo repository.StatsRepository, friendRepo repository.FriendRepository, profileRepo repository.ProfileRepository, c *cache.Cache) *StatsService {
	return &StatsService{statsRepo: statsRepo, friendRepo: friendRepo, profileRepo: profileRepo, cache: c}
}

// GetStats returns the statistics of ownerID, or of the viewer when ownerID
// is zero. Stats follow the owner's privacy level.
func (s *StatsService) GetStats(ctx context.Context, viewerID, ownerID uint) (*models.UserStats, error) {
	if ownerID == 0 {
		ownerID = viewerID
	}
	owner, err := s.profileRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if viewerID != ownerID {
		friendIDs, err := friendIDSet(ctx, s.cache, s.friendRepo, viewerID)
		if err != nil {
			return nil, err
		}
		if !feed.VisibleOnProfile(viewerID, ownerID, owner.PrivacyLevel, friendIDs) {
			return nil, models.NewForbiddenError("This profile's stats are private")
		}
	}

	var stats models.UserStats
	err = s.cache.Aside(ctx, cache.StatsKey(ownerID), &stats, cache.StatsTTL, func() error {
		agg, err := s.statsRepo.Aggregate(ctx, ownerID)
		if err != nil {
			return err
		}
		friends, err := s.friendRepo.CountAccepted(ctx, ownerID)
		if err != nil {
			return err
		}
		agg.FriendsCount = friends
		stats = *agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
