package repository

import (
	"context"
	"errors"
	"strings"

	"brewlog/internal/cache"
	"brewlog/internal/models"

	"gorm.io/gorm"
)

// searchLimit caps profile search results.
const searchLimit = 20

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Search(ctx context.Context, query string, excludeID uint) ([]models.Profile, error)
}

type profileRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB, c *cache.Cache) ProfileRepository {
	return &profileRepository{db: db, cache: c}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return wrap(err, "Profile", profile.ID, "Username or profile already exists")
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		return wrap(r.db.WithContext(ctx).First(&profile, id).Error, "Profile", id, "")
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Profile " + username + " not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).
		Model(profile).
		Select("display_name", "bio", "avatar_url", "privacy_level").
		Updates(profile).Error
	if err != nil {
		return wrap(err, "Profile", profile.ID, "Profile update conflicts with an existing profile")
	}
	r.cache.Invalidate(ctx, cache.ProfileKey(profile.ID))
	return nil
}

// Search matches username or display name case-insensitively and never
// returns the caller.
func (r *profileRepository) Search(ctx context.Context, query string, excludeID uint) ([]models.Profile, error) {
	profiles := []models.Profile{}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("(LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(display_name) LIKE ? ESCAPE '\\') AND id <> ?",
			pattern, pattern, excludeID).
		Order("username ASC").
		Limit(searchLimit).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
