package repository

import (
	"context"
	"errors"

	"brewlog/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint) ([]models.Comment, error)
	RepliesFor(ctx context.Context, parentIDs []uint) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id, userID uint, content string) (bool, error)
	DeleteWithReplies(ctx context.Context, id, userID uint) (bool, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return wrap(r.db.WithContext(ctx).First(&comment.User, comment.UserID).Error, "Profile", comment.UserID, "")
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListTopLevel returns a post's top-level comments, newest first.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// RepliesFor loads the replies to every parent in one query, oldest first.
func (r *commentRepository) RepliesFor(ctx context.Context, parentIDs []uint) ([]models.Comment, error) {
	replies := []models.Comment{}
	if len(parentIDs) == 0 {
		return replies, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

// UpdateContent rewrites a comment owned by userID. It reports false when
// no such comment exists for that user.
func (r *commentRepository) UpdateContent(ctx context.Context, id, userID uint, content string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("content", content)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// DeleteWithReplies removes a comment owned by userID together with its
// replies. It reports false when no such comment exists for that user.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, id, userID uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return deleted, nil
}
