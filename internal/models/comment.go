package models

import "time"

// Comment is a remark on a post. Replies carry ParentID and are one level
// deep: a reply never has replies of its own.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      Profile   `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Replies   []Comment `gorm:"-" json:"replies,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel reports whether c has no parent.
func (c Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// CommentPreview is the compact comment form embedded in feed entries.
type CommentPreview struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	User      ProfileSummary `json:"user"`
	CreatedAt time.Time      `json:"created_at"`
}
