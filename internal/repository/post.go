package repository

import (
	"context"
	"strings"

	"brewlog/internal/cache"
	"brewlog/internal/models"

	"gorm.io/gorm"
)

// ListOptions windows a post listing. UserID 0 lists every owner.
type ListOptions struct {
	Limit  int
	Offset int
	UserID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, opts ListOptions) ([]models.Post, error)
	SearchCandidates(ctx context.Context, query string, limit int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	LikesFor(ctx context.Context, postIDs []uint) ([]models.Like, error)
	CommentsFor(ctx context.Context, postIDs []uint, topLevelOnly bool) ([]models.Comment, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewPostRepository creates a new post repository. c may be nil.
func NewPostRepository(db *gorm.DB, c *cache.Cache) PostRepository {
	return &postRepository{db: db, cache: c}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return wrap(err, "Post", post.ID, "Post already exists")
	}
	return nil
}

// GetByID loads a post with its owner. The post row is cached; the owner is
// always read fresh so privacy changes apply immediately.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return wrap(r.db.WithContext(ctx).First(&post, id).Error, "Post", id, "")
	})
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).First(&post.User, post.UserID).Error; err != nil {
		return nil, wrap(err, "Profile", post.UserID, "")
	}
	return &post, nil
}

// List returns posts newest first, windowed by opts.
func (r *postRepository) List(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	posts := []models.Post{}
	q := r.db.WithContext(ctx).Preload("User")
	if opts.UserID != 0 {
		q = q.Where("user_id = ?", opts.UserID)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// SearchCandidates prefilters posts whose drink or shop name contains query,
// or whose coffee notes include it. Callers confirm matches in Go.
func (r *postRepository) SearchCandidates(ctx context.Context, query string, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	q := strings.ToLower(strings.TrimSpace(query))
	contains := "%" + escapeLike(q) + "%"
	note := `%"` + escapeLike(q) + `"%`
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("LOWER(drink_name) LIKE ? ESCAPE '\\' OR LOWER(shop_name) LIKE ? ESCAPE '\\' OR LOWER(coffee_notes) LIKE ? ESCAPE '\\'",
			contains, contains, note).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("shop_id", "shop_name", "drink_name", "rating", "photo_url", "location_notes", "shop_tags", "coffee_notes").
		Updates(post).Error
	if err != nil {
		return wrap(err, "Post", post.ID, "")
	}
	r.cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

// Delete removes a post with its likes and comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	r.cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}

func (r *postRepository) LikesFor(ctx context.Context, postIDs []uint) ([]models.Like, error) {
	likes := []models.Like{}
	if len(postIDs) == 0 {
		return likes, nil
	}
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

// CommentsFor loads comments on postIDs with their authors, newest first.
func (r *postRepository) CommentsFor(ctx context.Context, postIDs []uint, topLevelOnly bool) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(postIDs) == 0 {
		return comments, nil
	}
	q := r.db.WithContext(ctx).Preload("User").Where("post_id IN ?", postIDs)
	if topLevelOnly {
		q = q.Where("parent_id IS NULL")
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
