package export

import (
	"bytes"
	"context"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWrite_SheetsAndRows(t *testing.T) {
	rows := []Row{{
		Profile: models.Profile{Username: "alice", PrivacyLevel: models.PrivacyPublic},
		Stats: &models.UserStats{
			TotalDrinks:     3,
			DistinctShops:   2,
			AverageRating:   4,
			FriendsCount:    1,
			RatingHistogram: map[int]int64{3: 1, 4: 1, 5: 1},
			TopShops:        []models.RankedItem{{Name: "Blue Door", Count: 2}, {Name: "Kiln", Count: 1}},
			TopDrinks:       []models.RankedItem{{Name: "Cortado", Count: 3}},
			TopCoffeeNotes:  []models.RankedItem{},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetShops, SheetDrinks, SheetNotes}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Username", summary[0][0])
	assert.Equal(t, []string{"alice", "public", "3", "2", "4", "1", "0", "0", "1", "1", "1"}, summary[1])

	shops, err := f.GetRows(SheetShops)
	require.NoError(t, err)
	require.Len(t, shops, 3)
	assert.Equal(t, []string{"alice", "1", "Blue Door", "2"}, shops[1])
	assert.Equal(t, []string{"alice", "2", "Kiln", "1"}, shops[2])

	notes, err := f.GetRows(SheetNotes)
	require.NoError(t, err)
	assert.Len(t, notes, 1, "header only")
}

func TestCollect(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateProfile(t, db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, db, 2, "bob", models.PrivacyPrivate)
	testutil.CreatePost(t, db, 1, "Latte")
	testutil.CreatePost(t, db, 1, "Latte")
	testutil.Befriend(t, db, 1, 2)

	rows, err := Collect(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Profile.Username)
	assert.Equal(t, int64(2), rows[0].Stats.TotalDrinks)
	assert.Equal(t, int64(1), rows[0].Stats.FriendsCount)
	assert.Equal(t, []models.RankedItem{{Name: "Latte", Count: 2}}, rows[0].Stats.TopDrinks)

	rows, err = Collect(context.Background(), db, "bob")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Stats.TotalDrinks)
}
