package service

import (
	"context"

	"brewlog/internal/cache"
	"brewlog/internal/feed"
	"brewlog/internal/models"
	"brewlog/internal/repository"
	"brewlog/internal/validation"
)

const maxCommentLen = 1000

// errCommentNotFound deliberately does not say whether the comment exists.
var errCommentNotFound = models.NewNotFoundMessage("Comment not found or unauthorized")

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	friendRepo    repository.FriendRepository
	notifications *NotificationService
	cache         *cache.Cache
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ParentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	friendRepo repository.FriendRepository,
	notifications *NotificationService,
	c *cache.Cache,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		friendRepo:    friendRepo,
		notifications: notifications,
		cache:         c,
	}
}

// ListComments returns a post's top-level comments, newest first, each with
// its replies oldest first.
func (s *CommentService) ListComments(ctx context.Context, viewerID, postID uint) ([]models.Comment, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}

	tops, err := s.commentRepo.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(tops) == 0 {
		return tops, nil
	}

	ids := make([]uint, 0, len(tops))
	for _, c := range tops {
		ids = append(ids, c.ID)
	}
	replies, err := s.commentRepo.RepliesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	byParent := make(map[uint][]models.Comment, len(tops))
	for _, r := range replies {
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}
	for i := range tops {
		tops[i].Replies = byParent[tops[i].ID]
		if tops[i].Replies == nil {
			tops[i].Replies = []models.Comment{}
		}
	}
	return tops, nil
}

// CreateComment adds a comment or a reply to a top-level comment.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := validation.SanitizeText(in.Content)
	if err := validation.CheckLength("content", content, 1, maxCommentLen); err != nil {
		return nil, err
	}

	post, err := s.visiblePost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return nil, models.NewValidationError("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if !parent.IsTopLevel() {
			return nil, models.NewValidationError("Replies cannot be replied to")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		UserID:   in.UserID,
		Content:  content,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, &models.Notification{
		UserID:  post.UserID,
		Type:    models.NotificationComment,
		Title:   "New comment",
		Message: truncate(content, 120),
		ActorID: uintPtr(in.UserID),
		PostID:  uintPtr(post.ID),
	})
	return comment, nil
}

// UpdateComment rewrites a comment owned by the caller.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	content := validation.SanitizeText(in.Content)
	if err := validation.CheckLength("content", content, 1, maxCommentLen); err != nil {
		return nil, err
	}

	ok, err := s.commentRepo.UpdateContent(ctx, in.CommentID, in.UserID, content)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errCommentNotFound
	}
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

// DeleteComment removes a comment owned by the caller and its replies.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	ok, err := s.commentRepo.DeleteWithReplies(ctx, in.CommentID, in.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return errCommentNotFound
	}
	return nil
}

func (s *CommentService) visiblePost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
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

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
