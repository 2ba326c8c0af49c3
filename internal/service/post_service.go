package service

import (
	"context"
	"strings"

	"brewlog/internal/cache"
	"brewlog/internal/featureflags"
	"brewlog/internal/feed"
	"brewlog/internal/models"
	"brewlog/internal/observability"
	"brewlog/internal/repository"
	"brewlog/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const maxFeedLimit = 100

// PostService assembles feeds and manages posts and likes.
type PostService struct {
	postRepo      repository.PostRepository
	likeRepo      repository.LikeRepository
	friendRepo    repository.FriendRepository
	profileRepo   repository.ProfileRepository
	notifications *NotificationService
	flags         *featureflags.Manager
	cache         *cache.Cache
	defaultLimit  int
}

// PostFields are the editable fields of a post.
type PostFields struct {
	ShopID        string   `json:"shop_id" validate:"max=128"`
	ShopName      string   `json:"shop_name" validate:"max=200"`
	DrinkName     string   `json:"drink_name" validate:"required,max=120"`
	Rating        int      `json:"rating" validate:"required,min=1,max=5"`
	PhotoURL      string   `json:"photo_url" validate:"omitempty,httpurl"`
	LocationNotes string   `json:"location_notes" validate:"max=500"`
	ShopTags      []string `json:"shop_tags" validate:"omitempty,max=12,unique,dive,shoptag"`
	CoffeeNotes   []string `json:"coffee_notes" validate:"omitempty,max=15,unique,dive,coffeenote"`
}

type CreatePostInput struct {
	UserID uint
	PostFields
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	PostFields
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// ListFeedInput selects a feed page. UserID scopes the listing to one
// owner; Search switches to text search.
type ListFeedInput struct {
	ViewerID uint
	FeedType string
	Limit    int
	Offset   int
	UserID   uint
	Search   string
}

// LikeResult is the like state of a post after a like or unlike.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	friendRepo repository.FriendRepository,
	profileRepo repository.ProfileRepository,
	notifications *NotificationService,
	flags *featureflags.Manager,
	c *cache.Cache,
	defaultLimit int,
) *PostService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &PostService{
		postRepo:      postRepo,
		likeRepo:      likeRepo,
		friendRepo:    friendRepo,
		profileRepo:   profileRepo,
		notifications: notifications,
		flags:         flags,
		cache:         c,
		defaultLimit:  defaultLimit,
	}
}

// ListFeed returns one page of posts with engagement for the viewer.
// Offset and limit window the stored posts before visibility filtering, so
// a page may hold fewer than limit posts. Search ignores feed mode and
// offset.
func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) ([]models.FeedPost, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ListFeed",
		attribute.Int64("feed.viewer_id", int64(in.ViewerID)),
		attribute.String("feed.type", in.FeedType))
	defer span.End()

	if in.Offset < 0 {
		return nil, models.NewValidationError("offset must not be negative")
	}
	limit := clampLimit(in.Limit, s.defaultLimit, maxFeedLimit)
	in.Search = strings.TrimSpace(in.Search)

	var (
		posts []models.Post
		err   error
	)
	if in.Search != "" {
		posts, err = s.search(ctx, in.Search, limit)
	} else {
		posts, err = s.visiblePage(ctx, in, limit)
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("feed.result_count", len(posts)))

	return s.withEngagement(ctx, in.ViewerID, posts)
}

func (s *PostService) search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	candidates, err := s.postRepo.SearchCandidates(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(candidates))
	for i := range candidates {
		if feed.MatchesSearch(&candidates[i], query) {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

func (s *PostService) visiblePage(ctx context.Context, in ListFeedInput, limit int) ([]models.Post, error) {
	mode, err := feed.ParseMode(in.FeedType, in.ViewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx, repository.ListOptions{Limit: limit, Offset: in.Offset, UserID: in.UserID})
	if err != nil {
		return nil, err
	}
	friendIDs, err := friendIDSet(ctx, s.cache, s.friendRepo, in.ViewerID)
	if err != nil {
		return nil, err
	}

	var out []models.Post
	if in.UserID != 0 {
		out = make([]models.Post, 0, len(posts))
		for i := range posts {
			if feed.VisibleOnProfile(in.ViewerID, posts[i].UserID, posts[i].User.PrivacyLevel, friendIDs) {
				out = append(out, posts[i])
			}
		}
	} else {
		opts := feed.Options{
			PublicStrangersInFriends: s.flags.Enabled(featureflags.FriendsFeedPublicStrangers, in.ViewerID),
		}
		out = feed.Assemble(in.ViewerID, mode, posts, friendIDs, opts)
	}
	observability.FeedPostsFiltered.WithLabelValues(string(mode)).Add(float64(len(posts) - len(out)))
	return out, nil
}

// withEngagement loads likes and top-level comments for posts concurrently
// and merges them in.
func (s *PostService) withEngagement(ctx context.Context, viewerID uint, posts []models.Post) ([]models.FeedPost, error) {
	if len(posts) == 0 {
		return []models.FeedPost{}, nil
	}
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].ID)
	}

	var (
		likes    []models.Like
		comments []models.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likes, err = s.postRepo.LikesFor(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.postRepo.CommentsFor(gctx, ids, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feed.AttachEngagement(viewerID, posts, likes, comments), nil
}

// GetPost returns a single post with engagement. Its comment count includes
// replies. Posts the viewer may not see are reported as missing.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.FeedPost, error) {
	post, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	ids := []uint{post.ID}
	var (
		likes    []models.Like
		comments []models.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likes, err = s.postRepo.LikesFor(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.postRepo.CommentsFor(gctx, ids, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := feed.AttachEngagement(viewerID, []models.Post{*post}, likes, comments)[0]
	out.CommentCount = feed.CountAll(comments, post.ID)
	return &out, nil
}

// visiblePost loads a post and checks the viewer may see it.
func (s *PostService) visiblePost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	friendIDs, err := friendIDSet(ctx, s.cache, s.friendRepo, viewerID)
	if err != nil {
		return nil, err
	}
	if !feed.VisibleOnProfile(viewerID, post.UserID, post.User.PrivacyLevel, friendIDs) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// CreatePost validates and stores a new post for the caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	fields, err := cleanPostFields(in.PostFields)
	if err != nil {
		return nil, err
	}
	owner, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError("Create a profile before posting")
		}
		return nil, err
	}

	post := &models.Post{UserID: in.UserID}
	applyPostFields(post, fields)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.User = *owner
	s.cache.Invalidate(ctx, cache.StatsKey(in.UserID))
	return post, nil
}

// UpdatePost replaces the editable fields of a post owned by the caller.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	fields, err := cleanPostFields(in.PostFields)
	if err != nil {
		return nil, err
	}

	applyPostFields(post, fields)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.StatsKey(in.UserID))
	return post, nil
}

// DeletePost removes a post owned by the caller.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.StatsKey(in.UserID))
	return nil
}

// Like records the caller's like. Repeating it changes nothing.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	created, err := s.likeRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if created {
		s.notifications.Notify(ctx, &models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationLike,
			Title:   "New like",
			Message: "liked your " + post.DrinkName,
			ActorID: uintPtr(userID),
			PostID:  uintPtr(post.ID),
		})
	}
	return s.likeState(ctx, true, postID)
}

// Unlike removes the caller's like if there is one.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	if _, err := s.visiblePost(ctx, userID, postID); err != nil {
		return nil, err
	}
	if _, err := s.likeRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.likeState(ctx, false, postID)
}

func (s *PostService) likeState(ctx context.Context, liked bool, postID uint) (*LikeResult, error) {
	n, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: n}, nil
}

func cleanPostFields(f PostFields) (PostFields, error) {
	f.ShopID = validation.SanitizeText(f.ShopID)
	f.ShopName = validation.SanitizeText(f.ShopName)
	f.DrinkName = validation.SanitizeText(f.DrinkName)
	f.LocationNotes = validation.SanitizeText(f.LocationNotes)
	if err := validation.Struct(f); err != nil {
		return f, err
	}
	return f, nil
}

func applyPostFields(p *models.Post, f PostFields) {
	p.ShopID = f.ShopID
	p.ShopName = f.ShopName
	p.DrinkName = f.DrinkName
	p.Rating = f.Rating
	p.PhotoURL = f.PhotoURL
	p.LocationNotes = f.LocationNotes
	p.ShopTags = nonNil(f.ShopTags)
	p.CoffeeNotes = nonNil(f.CoffeeNotes)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
