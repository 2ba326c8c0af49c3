// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"testing"

	"brewlog/internal/database"
	"brewlog/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory database with every table migrated.
// The pool is pinned to one connection because each sqlite :memory:
// connection is a separate database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateProfile inserts a profile with the given privacy level.
func CreateProfile(t testing.TB, db *gorm.DB, id uint, username string, privacy models.PrivacyLevel) models.Profile {
	t.Helper()
	p := models.Profile{
		ID:           id,
		Username:     username,
		DisplayName:  username,
		PrivacyLevel: privacy,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// CreatePost inserts a post owned by userID.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, drink string) models.Post {
	t.Helper()
	p := models.Post{
		UserID:    userID,
		ShopID:    "shop-1",
		ShopName:  "Blue Door Coffee",
		DrinkName: drink,
		Rating:    4,
	}
	require.NoError(t, db.Omit("User").Create(&p).Error)
	return p
}

// Befriend stores an accepted friendship between a and b.
func Befriend(t testing.TB, db *gorm.DB, a, b uint) models.Friendship {
	t.Helper()
	f := models.Friendship{InitiatorID: a, ReceiverID: b, Status: models.FriendshipStatusAccepted}
	require.NoError(t, db.Omit("Initiator", "Receiver").Create(&f).Error)
	return f
}
