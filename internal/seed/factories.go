// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"brewlog/internal/models"
	"brewlog/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var drinkNames = []string{
	"Espresso", "Doppio", "Cortado", "Flat White", "Cappuccino", "Latte", "Oat Latte",
	"Mocha", "Macchiato", "Americano", "Pour Over", "Cold Brew", "Nitro Cold Brew",
	"Affogato", "Iced Latte", "Chai Latte", "Matcha Latte", "Honey Lavender Latte",
}

var nonUsernameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Shop is a coffee shop that seeded posts can reference.
type Shop struct {
	ID   string
	Name string
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and by tests.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	maxDays int
	nextID  uint
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed draws a
// random seed; any other value makes the generated content repeatable.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:      db,
		faker:   gofakeit.New(opts.RandSeed),
		maxDays: maxDays,
	}
}

// reserveProfileID hands out profile IDs above the highest one stored.
// Profile IDs come from the identity provider, so there is no sequence.
func (f *Factory) reserveProfileID(ctx context.Context) (uint, error) {
	if f.nextID == 0 {
		var maxID uint
		err := f.db.WithContext(ctx).Model(&models.Profile{}).
			Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error
		if err != nil {
			return 0, fmt.Errorf("find highest profile id: %w", err)
		}
		f.nextID = maxID
	}
	f.nextID++
	return f.nextID, nil
}

// Username derives a valid, unique-per-ID username from a fake handle.
func (f *Factory) Username(id uint) string {
	base := nonUsernameChars.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	suffix := fmt.Sprintf("_%d", id)
	if limit := 30 - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	if len(base) < 3 {
		base = "brewer"
	}
	return base + suffix
}

// RandomPrivacy picks a privacy level, mostly public.
func (f *Factory) RandomPrivacy() models.PrivacyLevel {
	switch n := f.faker.Number(1, 10); {
	case n <= 7:
		return models.PrivacyPublic
	case n <= 9:
		return models.PrivacyFriendsOnly
	default:
		return models.PrivacyPrivate
	}
}

// CreateProfile constructs and persists a sample profile. Optional override
// functions may modify the generated profile before saving.
func (f *Factory) CreateProfile(ctx context.Context, overrides ...func(*models.Profile)) (*models.Profile, error) {
	id, err := f.reserveProfileID(ctx)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		ID:           id,
		Username:     f.Username(id),
		DisplayName:  f.faker.Name(),
		Bio:          f.faker.Sentence(10),
		AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%d", id),
		PrivacyLevel: f.RandomPrivacy(),
	}
	for _, override := range overrides {
		override(profile)
	}

	if err := f.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Shops returns n distinct fake shops.
func (f *Factory) Shops(n int) []Shop {
	shops := make([]Shop, n)
	for i := range shops {
		shops[i] = Shop{
			ID:   fmt.Sprintf("shop-%s", f.faker.UUID()[:8]),
			Name: f.faker.Company() + " Coffee",
		}
	}
	return shops
}

// BuildPost constructs a post at one of shops without persisting it.
// CreatedAt is spread over the factory's MaxDays window.
func (f *Factory) BuildPost(userID uint, shops []Shop, overrides ...func(*models.Post)) *models.Post {
	shop := shops[f.faker.Number(0, len(shops)-1)]
	post := &models.Post{
		UserID:      userID,
		ShopID:      shop.ID,
		ShopName:    shop.Name,
		DrinkName:   f.faker.RandomString(drinkNames),
		Rating:      f.faker.Number(1, 5),
		ShopTags:    f.pick(validation.ShopTags, 3),
		CoffeeNotes: f.pick(validation.CoffeeNotes, 3),
		CreatedAt:   f.pastTime(),
	}
	if f.faker.Number(1, 10) <= 4 {
		post.PhotoURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	if f.faker.Bool() {
		post.LocationNotes = f.faker.Sentence(6)
	}
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).Omit("User").CreateInBatches(posts, 200).Error
}

// CreateFriendship stores a friendship between initiator and receiver
// unless the pair already has one. It reports whether a row was inserted.
func (f *Factory) CreateFriendship(ctx context.Context, initiator, receiver uint, status models.FriendshipStatus) (bool, error) {
	friendship := &models.Friendship{
		InitiatorID: initiator,
		ReceiverID:  receiver,
		Status:      status,
	}
	res := f.db.WithContext(ctx).Omit("Initiator", "Receiver").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(friendship)
	return res.RowsAffected > 0, res.Error
}

// CreateLike persists a like from userID on postID. Repeats are ignored.
func (f *Factory) CreateLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := f.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID, CreatedAt: f.pastTime()})
	return res.RowsAffected > 0, res.Error
}

// CreateComment persists a sample comment, or a reply when parentID is set.
func (f *Factory) CreateComment(ctx context.Context, userID, postID uint, parentID *uint) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  f.faker.Sentence(f.faker.Number(3, 14)),
		ParentID: parentID,
	}
	if err := f.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// pick returns up to limit distinct entries of vocab in random order.
func (f *Factory) pick(vocab []string, limit int) []string {
	n := f.faker.Number(0, limit)
	shuffled := append([]string(nil), vocab...)
	f.faker.ShuffleStrings(shuffled)
	return shuffled[:n]
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().Add(-back).UTC()
}
