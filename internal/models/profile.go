package models

import "time"

// PrivacyLevel governs who may see a profile's posts.
type PrivacyLevel string

const (
	PrivacyPublic      PrivacyLevel = "public"
	PrivacyFriendsOnly PrivacyLevel = "friends_only"
	PrivacyPrivate     PrivacyLevel = "private"
)

// Valid reports whether p is one of the known privacy levels.
func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyFriendsOnly, PrivacyPrivate:
		return true
	}
	return false
}

// Profile is an account's public identity. Its ID is the subject issued by
// the identity provider.
type Profile struct {
	ID           uint         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username     string       `gorm:"size:30;uniqueIndex;not null" json:"username"`
	DisplayName  string       `gorm:"size:60" json:"display_name"`
	Bio          string       `gorm:"size:280" json:"bio"`
	AvatarURL    string       `json:"avatar_url"`
	PrivacyLevel PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"privacy_level"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileSummary is the subset of profile fields shown next to someone
// else's content.
type ProfileSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Summary returns the public display fields of p.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}
