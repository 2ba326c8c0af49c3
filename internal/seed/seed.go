package seed

import (
	"context"
	"fmt"
	"log/slog"

	"brewlog/internal/middleware"
	"brewlog/internal/models"

	"gorm.io/gorm"
)

// Options configures Seed.
type Options struct {
	Profiles           int
	PostsPerProfile    int
	FriendsPerProfile  int
	MaxLikesPerPost    int
	MaxCommentsPerPost int
	MaxDays            int
	RandSeed           int64
	Clean              bool
}

// DefaultOptions is a small but lively demo data set.
func DefaultOptions() Options {
	return Options{
		Profiles:           20,
		PostsPerProfile:    6,
		FriendsPerProfile:  4,
		MaxLikesPerPost:    8,
		MaxCommentsPerPost: 4,
		MaxDays:            90,
	}
}

// Summary counts what Seed inserted.
type Summary struct {
	Profiles    int `json:"profiles"`
	Friendships int `json:"friendships"`
	Pending     int `json:"pending"`
	Posts       int `json:"posts"`
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
}

// Seed populates the database with demo profiles, friendships, posts,
// likes and comments. Everything is written in one transaction.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Profiles < 2 {
		return nil, fmt.Errorf("seed needs at least 2 profiles, got %d", opts.Profiles)
	}
	middleware.Logger.Info("seeding database",
		slog.Int("profiles", opts.Profiles),
		slog.Int("posts_per_profile", opts.PostsPerProfile))

	var summary Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clean {
			if err := clearData(tx); err != nil {
				return fmt.Errorf("clear existing data: %w", err)
			}
		}

		f := NewFactory(tx, opts)
		profiles, err := seedProfiles(ctx, f, opts.Profiles)
		if err != nil {
			return fmt.Errorf("create profiles: %w", err)
		}
		summary.Profiles = len(profiles)

		if err := seedFriendships(ctx, f, profiles, opts.FriendsPerProfile, &summary); err != nil {
			return fmt.Errorf("create friendships: %w", err)
		}

		shops := f.Shops(max(3, opts.Profiles/2))
		posts := make([]*models.Post, 0, opts.Profiles*opts.PostsPerProfile)
		for _, p := range profiles {
			for i := 0; i < opts.PostsPerProfile; i++ {
				posts = append(posts, f.BuildPost(p.ID, shops))
			}
		}
		if err := f.CreatePostsBatch(ctx, posts); err != nil {
			return fmt.Errorf("create posts: %w", err)
		}
		summary.Posts = len(posts)

		if err := seedEngagement(ctx, f, profiles, posts, opts, &summary); err != nil {
			return fmt.Errorf("create engagement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.Info("database seeding completed",
		slog.Int("profiles", summary.Profiles),
		slog.Int("friendships", summary.Friendships),
		slog.Int("posts", summary.Posts),
		slog.Int("likes", summary.Likes),
		slog.Int("comments", summary.Comments))
	return &summary, nil
}

// clearData removes every row the seeder can create, children first.
func clearData(tx *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.Notification{}, &models.Comment{}, &models.Like{},
		&models.Post{}, &models.Friendship{}, &models.Profile{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedProfiles(ctx context.Context, f *Factory, n int) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0, n)
	for i := 0; i < n; i++ {
		p, err := f.CreateProfile(ctx)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// seedFriendships links each profile to a few random others. Roughly one in
// five links is left pending so the request inbox has something in it.
func seedFriendships(ctx context.Context, f *Factory, profiles []*models.Profile, perProfile int, s *Summary) error {
	for i, p := range profiles {
		for j := 0; j < perProfile; j++ {
			other := profiles[f.faker.Number(0, len(profiles)-1)]
			if other.ID == p.ID {
				continue
			}
			status := models.FriendshipStatusAccepted
			if f.faker.Number(1, 5) == 1 {
				status = models.FriendshipStatusPending
			}
			inserted, err := f.CreateFriendship(ctx, p.ID, other.ID, status)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			if status == models.FriendshipStatusPending {
				s.Pending++
			} else {
				s.Friendships++
			}
		}
		if (i+1)%50 == 0 {
			middleware.Logger.Debug("seeded friendships", slog.Int("profiles_done", i+1))
		}
	}
	return nil
}

func seedEngagement(ctx context.Context, f *Factory, profiles []*models.Profile, posts []*models.Post, opts Options, s *Summary) error {
	for _, post := range posts {
		for i := f.faker.Number(0, opts.MaxLikesPerPost); i > 0; i-- {
			liker := profiles[f.faker.Number(0, len(profiles)-1)]
			if liker.ID == post.UserID {
				continue
			}
			inserted, err := f.CreateLike(ctx, liker.ID, post.ID)
			if err != nil {
				return err
			}
			if inserted {
				s.Likes++
			}
		}

		var topLevel []uint
		for i := f.faker.Number(0, opts.MaxCommentsPerPost); i > 0; i-- {
			author := profiles[f.faker.Number(0, len(profiles)-1)]
			var parentID *uint
			if len(topLevel) > 0 && f.faker.Number(1, 3) == 1 {
				parent := topLevel[f.faker.Number(0, len(topLevel)-1)]
				parentID = &parent
			}
			c, err := f.CreateComment(ctx, author.ID, post.ID, parentID)
			if err != nil {
				return err
			}
			if parentID == nil {
				topLevel = append(topLevel, c.ID)
			}
			s.Comments++
		}
	}
	return nil
}
