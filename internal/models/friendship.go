// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus represents the status of a friendship request.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a pending friendship request.
	FriendshipStatusPending FriendshipStatus = "pending"
	// FriendshipStatusAccepted indicates an accepted friendship request.
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	// FriendshipStatusBlocked indicates a blocked friendship.
	FriendshipStatusBlocked FriendshipStatus = "blocked"
)

// Friendship relates two profiles. It is created by the initiator and takes
// effect for both sides once the receiver accepts it.
//
// UserLowID/UserHighID hold the unordered pair in canonical order so the
// unique index admits at most one row per pair regardless of direction.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	InitiatorID uint             `gorm:"not null;index" json:"initiator_id"`
	ReceiverID  uint             `gorm:"not null;index" json:"receiver_id"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_friendships_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_friendships_pair" json:"-"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_friendships_status" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Initiator Profile `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
	Receiver  Profile `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// CanonicalPair orders two profile IDs low-high.
func CanonicalPair(a, b uint) (low, high uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// BeforeCreate fills the canonical pair columns from the directed IDs.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.UserLowID, f.UserHighID = CanonicalPair(f.InitiatorID, f.ReceiverID)
	return nil
}

// Involves reports whether userID is either party.
func (f *Friendship) Involves(userID uint) bool {
	return f.InitiatorID == userID || f.ReceiverID == userID
}

// OtherParty returns the ID of the party that is not userID.
func (f *Friendship) OtherParty(userID uint) uint {
	if f.InitiatorID == userID {
		return f.ReceiverID
	}
	return f.InitiatorID
}
