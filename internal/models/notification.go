package models

import "time"

// NotificationType classifies the action that produced a notification.
type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationComment        NotificationType = "comment"
	NotificationLike           NotificationType = "like"
)

// Notification is delivered to UserID. Only the recipient may mark it read.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type         NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title        string           `gorm:"size:120" json:"title"`
	Message      string           `gorm:"size:500" json:"message"`
	ActorID      *uint            `json:"actor_id,omitempty"`
	PostID       *uint            `json:"post_id,omitempty"`
	FriendshipID *uint            `json:"friendship_id,omitempty"`
	Read         bool             `gorm:"not null;default:false;index:idx_notifications_user_read" json:"read"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
