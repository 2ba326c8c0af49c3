package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"brewlog/internal/models"
	"brewlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedDrinks(posts []models.FeedPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.DrinkName)
	}
	return out
}

func validFields() PostFields {
	return PostFields{ShopID: "s1", ShopName: "Blue Door", DrinkName: "Cortado", Rating: 4}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)

	tests := []struct {
		name    string
		mutate  func(*PostFields)
		wantErr bool
	}{
		{"rating 0", func(f *PostFields) { f.Rating = 0 }, true},
		{"rating 6", func(f *PostFields) { f.Rating = 6 }, true},
		{"rating 1", func(f *PostFields) { f.Rating = 1 }, false},
		{"rating 5", func(f *PostFields) { f.Rating = 5 }, false},
		{"missing drink", func(f *PostFields) { f.DrinkName = "   " }, true},
		{"markup-only drink", func(f *PostFields) { f.DrinkName = "<b></b>" }, true},
		{"unknown shop tag", func(f *PostFields) { f.ShopTags = []string{"disco"} }, true},
		{"known vocab", func(f *PostFields) {
			f.ShopTags = []string{"wifi", "cozy"}
			f.CoffeeNotes = []string{"nutty"}
		}, false},
		{"bad photo url", func(f *PostFields) { f.PhotoURL = "javascript:alert(1)" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			post, err := ts.posts.CreatePost(ctx, CreatePostInput{UserID: 1, PostFields: f})
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, post.ID)
			assert.Equal(t, "alice", post.User.Username)
		})
	}

	_, err := ts.posts.CreatePost(ctx, CreatePostInput{UserID: 42, PostFields: validFields()})
	assert.True(t, models.IsCode(err, models.CodeValidation), "posting needs a profile")
}

func TestPostService_ListFeed_ExploreAndFriends(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	// A public, C friends_only and friend of A, D private, B unrelated.
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 3, "cara", models.PrivacyFriendsOnly)
	testutil.CreateProfile(t, ts.db, 4, "dave", models.PrivacyPrivate)
	testutil.Befriend(t, ts.db, 1, 3)
	testutil.Befriend(t, ts.db, 4, 1)

	testutil.CreatePost(t, ts.db, 1, "A latte")
	testutil.CreatePost(t, ts.db, 3, "C mocha")
	testutil.CreatePost(t, ts.db, 4, "D drip")

	explore, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "explore"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A latte"}, feedDrinks(explore))

	bFriends, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "friends"})
	require.NoError(t, err)
	assert.NotContains(t, feedDrinks(bFriends), "C mocha", "B is not C's friend")
	assert.Contains(t, feedDrinks(bFriends), "A latte", "public strangers show up in the friends feed")

	aFriends, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 1, FeedType: "friends"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A latte", "C mocha"}, feedDrinks(aFriends), "private friends stay hidden")

	dOwn, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 4})
	require.NoError(t, err)
	assert.Contains(t, feedDrinks(dOwn), "D drip", "own posts are always shown")

	anon, err := ts.posts.ListFeed(ctx, ListFeedInput{FeedType: "friends"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A latte"}, feedDrinks(anon), "anonymous viewers get explore")

	_, err = ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 1, FeedType: "trending"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 1, Offset: -1})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_ListFeed_StrangerFlagOff(t *testing.T) {
	ts := newTestServices(t, "friends_feed_public_strangers=off")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	testutil.CreatePost(t, ts.db, 1, "A latte")
	testutil.CreatePost(t, ts.db, 2, "B flat white")

	got, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "friends"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B flat white"}, feedDrinks(got))
}

func TestPostService_ListFeed_UserScopeAndWindow(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyFriendsOnly)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 3, "cara", models.PrivacyPublic)
	testutil.Befriend(t, ts.db, 1, 2)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := models.Post{UserID: 1, DrinkName: string(rune('a' + i)), Rating: 3, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, ts.db.Omit("User").Create(&p).Error)
	}

	friendView, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, UserID: 1, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, feedDrinks(friendView))

	strangerView, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 3, UserID: 1})
	require.NoError(t, err)
	assert.Empty(t, strangerView)
}

func TestPostService_ListFeed_Search(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPrivate)
	_, err := ts.posts.CreatePost(ctx, CreatePostInput{UserID: 1, PostFields: PostFields{
		ShopName: "Ritual", DrinkName: "Gibraltar", Rating: 5, CoffeeNotes: []string{"berry"},
	}})
	require.NoError(t, err)
	_, err = ts.posts.CreatePost(ctx, CreatePostInput{UserID: 1, PostFields: PostFields{
		ShopName: "Sightglass", DrinkName: "Berry Tonic", Rating: 3,
	}})
	require.NoError(t, err)

	got, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "explore", Search: "BERRY", Offset: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Gibraltar", "Berry Tonic"}, feedDrinks(got),
		"search ignores feed mode, privacy and offset")

	got, err = ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "explore", Search: "  berry\t"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "surrounding whitespace is ignored")

	testutil.CreateProfile(t, ts.db, 3, "carol", models.PrivacyPublic)
	testutil.CreatePost(t, ts.db, 3, "Cortado")
	got, err = ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "explore", Search: "   "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cortado"}, feedDrinks(got), "blank search falls back to the feed")
}

func TestPostService_EngagementAndDetail(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	post := testutil.CreatePost(t, ts.db, 1, "Latte")

	res, err := ts.posts.Like(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikeCount: 1}, *res)
	assert.Equal(t, 1, ts.pushed[1], "owner is notified once")

	res, err = ts.posts.Like(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LikeCount)
	assert.Equal(t, 1, ts.pushed[1], "repeat likes do not notify")

	_, err = ts.posts.Like(ctx, 1, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.pushed[1], "liking your own post does not notify")

	var top *models.Comment
	for i := 0; i < 4; i++ {
		c, err := ts.comments.CreateComment(ctx, CreateCommentInput{UserID: 2, PostID: post.ID, Content: "nice"})
		require.NoError(t, err)
		top = c
	}
	_, err = ts.comments.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: post.ID, Content: "thanks", ParentID: &top.ID})
	require.NoError(t, err)

	page, err := ts.posts.ListFeed(ctx, ListFeedInput{ViewerID: 2, FeedType: "explore"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].LikeCount)
	assert.True(t, page[0].UserHasLiked)
	assert.Equal(t, 4, page[0].CommentCount, "feed counts top-level comments")
	assert.Len(t, page[0].CommentsPreview, 3)
	assert.Equal(t, "bob", page[0].CommentsPreview[0].User.Username)

	detail, err := ts.posts.GetPost(ctx, 0, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, detail.CommentCount, "detail counts replies too")
	assert.False(t, detail.UserHasLiked)

	res, err = ts.posts.Unlike(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikeCount: 1}, *res)
	res, err = ts.posts.Unlike(ctx, 2, post.ID)
	require.NoError(t, err, "unliking twice is harmless")
	assert.False(t, res.Liked)
}

func TestPostService_ConcurrentDoubleLike(t *testing.T) {
	ts := newTestServices(t, "")
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	post := testutil.CreatePost(t, ts.db, 1, "Latte")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.posts.Like(context.Background(), 2, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var n int64
	require.NoError(t, ts.db.Model(&models.Like{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestPostService_OwnershipAndVisibility(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPrivate)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)
	post := testutil.CreatePost(t, ts.db, 1, "Latte")

	_, err := ts.posts.GetPost(ctx, 2, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "private posts look missing")
	_, err = ts.posts.Like(ctx, 2, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = ts.posts.UpdatePost(ctx, UpdatePostInput{UserID: 2, PostID: post.ID, PostFields: validFields()})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	err = ts.posts.DeletePost(ctx, DeletePostInput{UserID: 2, PostID: post.ID})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	err = ts.posts.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: 999})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	fields := validFields()
	fields.Rating = 0
	_, err = ts.posts.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: post.ID, PostFields: fields})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	updated, err := ts.posts.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: post.ID, PostFields: validFields()})
	require.NoError(t, err)
	assert.Equal(t, "Cortado", updated.DrinkName)

	require.NoError(t, ts.posts.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: post.ID}))
	_, err = ts.posts.GetPost(ctx, 1, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
