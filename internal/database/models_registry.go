package database

import "brewlog/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Friendship{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	}
}
