package service

import (
	"testing"

	"brewlog/internal/cache"
	"brewlog/internal/featureflags"
	"brewlog/internal/notifications"
	"brewlog/internal/repository"
	"brewlog/internal/testutil"

	"gorm.io/gorm"
)

type testServices struct {
	db            *gorm.DB
	posts         *PostService
	comments      *CommentService
	friends       *FriendService
	profiles      *ProfileService
	stats         *StatsService
	notifications *NotificationService
	pushed        map[uint]int
}

// newTestServices wires every service to one sqlite database. Pushed
// notifications are counted per recipient.
func newTestServices(t *testing.T, flags string) *testServices {
	t.Helper()
	return newCachedTestServices(t, flags, nil)
}

// newCachedTestServices is newTestServices with c as the shared cache.
func newCachedTestServices(t *testing.T, flags string, c *cache.Cache) *testServices {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	ts := &testServices{db: db, pushed: map[uint]int{}}
	notifier := notifications.NewNotifier(nil)
	_ = notifier.StartPatternSubscriber(t.Context(), func(userID uint, _ []byte) {
		ts.pushed[userID]++
	})

	postRepo := repository.NewPostRepository(db, c)
	friendRepo := repository.NewFriendRepository(db)
	profileRepo := repository.NewProfileRepository(db, c)

	ts.notifications = NewNotificationService(repository.NewNotificationRepository(db), notifier)
	ts.friends = NewFriendService(friendRepo, profileRepo, ts.notifications, c)
	ts.posts = NewPostService(postRepo, repository.NewLikeRepository(db), friendRepo, profileRepo,
		ts.notifications, featureflags.NewManager(flags), c, 20)
	ts.comments = NewCommentService(repository.NewCommentRepository(db), postRepo, friendRepo, ts.notifications, c)
	ts.profiles = NewProfileService(profileRepo, ts.friends)
	ts.stats = NewStatsService(repository.NewStatsRepository(db), friendRepo, profileRepo, c)
	return ts
}
