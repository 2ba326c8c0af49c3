// Package export renders drink statistics as an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"

	"brewlog/internal/models"
	"brewlog/internal/repository"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Sheet names in the order they appear in the workbook.
const (
	SheetSummary = "Summary"
	SheetShops   = "Top Shops"
	SheetDrinks  = "Top Drinks"
	SheetNotes   = "Coffee Notes"
)

var summaryHeader = []any{
	"Username", "Privacy", "Drinks", "Distinct Shops", "Avg Rating", "Friends",
	"1 Star", "2 Stars", "3 Stars", "4 Stars", "5 Stars",
}

// Row pairs a profile with its statistics.
type Row struct {
	Profile models.Profile
	Stats   *models.UserStats
}

// Collect computes stats for every profile, or only for the given
// usernames when any are passed. Rows are ordered by username.
func Collect(ctx context.Context, db *gorm.DB, usernames ...string) ([]Row, error) {
	var profiles []models.Profile
	q := db.WithContext(ctx).Order("username")
	if len(usernames) > 0 {
		q = q.Where("username IN ?", usernames)
	}
	if err := q.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	statsRepo := repository.NewStatsRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	rows := make([]Row, 0, len(profiles))
	for _, p := range profiles {
		stats, err := statsRepo.Aggregate(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", p.Username, err)
		}
		if stats.FriendsCount, err = friendRepo.CountAccepted(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("friends for %s: %w", p.Username, err)
		}
		rows = append(rows, Row{Profile: p, Stats: stats})
	}
	return rows, nil
}

// Workbook builds a workbook with a summary sheet and one sheet per
// ranking. The caller owns the returned file and must Close it.
func Workbook(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := build(f, rows); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Write renders rows as an .xlsx document to w.
func Write(w io.Writer, rows []Row) error {
	f, err := Workbook(rows)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteTo(w)
	return err
}

func build(f *excelize.File, rows []Row) error {
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetShops, SheetDrinks, SheetNotes} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summary := [][]any{summaryHeader}
	for _, r := range rows {
		s := r.Stats
		summary = append(summary, []any{
			r.Profile.Username, string(r.Profile.PrivacyLevel), s.TotalDrinks, s.DistinctShops,
			s.AverageRating, s.FriendsCount,
			s.RatingHistogram[1], s.RatingHistogram[2], s.RatingHistogram[3],
			s.RatingHistogram[4], s.RatingHistogram[5],
		})
	}
	if err := writeSheet(f, SheetSummary, summary, bold); err != nil {
		return err
	}

	rankings := map[string]func(*models.UserStats) []models.RankedItem{
		SheetShops:  func(s *models.UserStats) []models.RankedItem { return s.TopShops },
		SheetDrinks: func(s *models.UserStats) []models.RankedItem { return s.TopDrinks },
		SheetNotes:  func(s *models.UserStats) []models.RankedItem { return s.TopCoffeeNotes },
	}
	for sheet, items := range rankings {
		table := [][]any{{"Username", "Rank", "Name", "Count"}}
		for _, r := range rows {
			for i, item := range items(r.Stats) {
				table = append(table, []any{r.Profile.Username, i + 1, item.Name, item.Count})
			}
		}
		if err := writeSheet(f, sheet, table, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return nil
}

// writeSheet writes table starting at A1 with a bold, frozen header row.
func writeSheet(f *excelize.File, sheet string, table [][]any, headerStyle int) error {
	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
