package repository

import (
	"context"
	"errors"

	"brewlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository defines the interface for friend data operations
type FriendRepository interface {
	CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	GetBetweenMany(ctx context.Context, userID uint, others []uint) ([]models.Friendship, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error)
	AcceptPending(ctx context.Context, friendshipID, receiverID uint) (bool, error)
	Delete(ctx context.Context, friendshipID uint) error
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	CountAccepted(ctx context.Context, userID uint) (int64, error)
}

// friendRepository implements FriendRepository
type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// CreateIfAbsent inserts a row unless one already relates the pair, in
// either direction. It reports whether this call created the row.
func (r *friendRepository) CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(friendship)
	if result.Error != nil {
		return false, wrap(result.Error, "Friendship", friendship.ID, "A friendship with this user already exists")
	}
	return result.RowsAffected == 1, nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).Preload("Initiator").Preload("Receiver").First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// GetBetween returns the row relating the two users, or nil when there is
// none.
func (r *friendRepository) GetBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	var friendship models.Friendship
	low, high := models.CanonicalPair(userA, userB)

	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No friendship exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// GetBetweenMany returns every row relating userID to one of others.
func (r *friendRepository) GetBetweenMany(ctx context.Context, userID uint, others []uint) ([]models.Friendship, error) {
	friendships := []models.Friendship{}
	if len(others) == 0 {
		return friendships, nil
	}
	if err := r.db.WithContext(ctx).
		Where("(initiator_id = ? AND receiver_id IN ?) OR (receiver_id = ? AND initiator_id IN ?)",
			userID, others, userID, others).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

// ListForUser loads every row touching userID with both profiles.
func (r *friendRepository) ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	friendships := []models.Friendship{}
	if err := r.db.WithContext(ctx).
		Where("initiator_id = ? OR receiver_id = ?", userID, userID).
		Preload("Initiator").
		Preload("Receiver").
		Order("created_at DESC").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

// AcceptPending flips a pending row addressed to receiverID to accepted. It
// reports false when no row matched, which means the row changed since it
// was read.
func (r *friendRepository) AcceptPending(ctx context.Context, friendshipID, receiverID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ? AND receiver_id = ? AND status = ?", friendshipID, receiverID, models.FriendshipStatusPending).
		Update("status", models.FriendshipStatusAccepted)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *friendRepository) Delete(ctx context.Context, friendshipID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Friendship{}, friendshipID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FriendIDs returns the IDs of userID's accepted friends.
func (r *friendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var rows []models.Friendship
	if err := r.db.WithContext(ctx).
		Select("initiator_id", "receiver_id").
		Where("(initiator_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.FriendshipStatusAccepted).
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]uint, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].OtherParty(userID))
	}
	return ids, nil
}

func (r *friendRepository) CountAccepted(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("(initiator_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.FriendshipStatusAccepted).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
