package repository

import (
	"context"
	"sort"
	"strings"

	"brewlog/internal/models"

	"gorm.io/gorm"
)

// topN is the length of every ranking in UserStats.
const topN = 5

// StatsRepository computes a profile's drink statistics with SQL
// aggregates.
type StatsRepository interface {
	Aggregate(ctx context.Context, userID uint) (*models.UserStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

type totalsRow struct {
	Total         int64
	DistinctShops int64
	AverageRating float64
}

type histogramRow struct {
	Rating int
	Count  int64
}

// Aggregate fills everything but FriendsCount.
func (r *statsRepository) Aggregate(ctx context.Context, userID uint) (*models.UserStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.UserStats{
		UserID:          userID,
		RatingHistogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var totals totalsRow
	if err := db.Model(&models.Post{}).
		Select("COUNT(*) AS total, COUNT(DISTINCT COALESCE(NULLIF(shop_id, ''), shop_name)) AS distinct_shops, COALESCE(AVG(rating), 0) AS average_rating").
		Where("user_id = ?", userID).
		Scan(&totals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.TotalDrinks = totals.Total
	stats.DistinctShops = totals.DistinctShops
	stats.AverageRating = totals.AverageRating

	var hist []histogramRow
	if err := db.Model(&models.Post{}).
		Select("rating, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("rating").
		Scan(&hist).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, h := range hist {
		stats.RatingHistogram[h.Rating] = h.Count
	}

	var err error
	if stats.TopShops, err = r.ranking(db, userID, "shop_name"); err != nil {
		return nil, err
	}
	if stats.TopDrinks, err = r.ranking(db, userID, "drink_name"); err != nil {
		return nil, err
	}

	var noteRows []models.Post
	if err := db.Select("coffee_notes").Where("user_id = ?", userID).Find(&noteRows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.TopCoffeeNotes = tallyNotes(noteRows)

	return stats, nil
}

// ranking counts posts per value of column, most frequent first.
func (r *statsRepository) ranking(db *gorm.DB, userID uint, column string) ([]models.RankedItem, error) {
	items := []models.RankedItem{}
	err := db.Model(&models.Post{}).
		Select(column+" AS name, COUNT(*) AS count").
		Where("user_id = ? AND "+column+" <> ''", userID).
		Group(column).
		Order("count DESC").Order("name ASC").
		Limit(topN).
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func tallyNotes(posts []models.Post) []models.RankedItem {
	counts := make(map[string]int64)
	for i := range posts {
		for _, note := range posts[i].CoffeeNotes {
			counts[strings.ToLower(note)]++
		}
	}
	items := make([]models.RankedItem, 0, len(counts))
	for name, n := range counts {
		items = append(items, models.RankedItem{Name: name, Count: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > topN {
		items = items[:topN]
	}
	return items
}
