package models

import "time"

// Post is a logged drink at a coffee shop.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          Profile   `gorm:"foreignKey:UserID" json:"user"`
	ShopID        string    `gorm:"size:128;index" json:"shop_id"`
	ShopName      string    `gorm:"size:200" json:"shop_name"`
	DrinkName     string    `gorm:"size:120;not null" json:"drink_name"`
	Rating        int       `gorm:"not null;check:chk_posts_rating,rating >= 1 AND rating <= 5" json:"rating"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	LocationNotes string    `gorm:"type:text" json:"location_notes,omitempty"`
	ShopTags      []string  `gorm:"serializer:json;type:text" json:"shop_tags"`
	CoffeeNotes   []string  `gorm:"serializer:json;type:text" json:"coffee_notes"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// FeedPost is a post merged with the engagement visible to one viewer.
type FeedPost struct {
	Post
	LikeCount       int              `json:"like_count"`
	UserHasLiked    bool             `json:"user_has_liked"`
	CommentCount    int              `json:"comment_count"`
	CommentsPreview []CommentPreview `json:"comments_preview"`
}

// Like records that a profile liked a post. Unique per (post, user).
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}
