package models

// RankedItem is a name with how often it occurs.
type RankedItem struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// UserStats aggregates one profile's drink log.
type UserStats struct {
	UserID          uint          `json:"user_id"`
	TotalDrinks     int64         `json:"total_drinks"`
	DistinctShops   int64         `json:"distinct_shops"`
	AverageRating   float64       `json:"average_rating"`
	RatingHistogram map[int]int64 `json:"rating_histogram"`
	TopShops        []RankedItem  `json:"top_shops"`
	TopDrinks       []RankedItem  `json:"top_drinks"`
	TopCoffeeNotes  []RankedItem  `json:"top_coffee_notes"`
	FriendsCount    int64         `json:"friends_count"`
}
