package commands

import (
	"fmt"
	"os"

	"brewlog/internal/export"

	"github.com/spf13/cobra"
)

var (
	statsOut   string
	statsUsers []string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Drink statistics reports",
}

var statsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write per-profile drink statistics to an .xlsx workbook",
	Long: `Write per-profile drink statistics to an .xlsx workbook.

Examples:
  brewctl stats export                           # every profile
  brewctl stats export --user alice --user bob   # selected profiles
  brewctl stats export --out report.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		rows, err := export.Collect(cmd.Context(), db, statsUsers...)
		if err != nil {
			return err
		}

		f, err := os.Create(statsOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", statsOut, err)
		}
		if err := export.Write(f, rows); err != nil {
			_ = f.Close()
			return fmt.Errorf("write workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		cmd.Printf("wrote %d profiles to %s\n", len(rows), statsOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsExportCmd)
	statsExportCmd.Flags().StringVarP(&statsOut, "out", "o", "brewlog-stats.xlsx", "Output file")
	statsExportCmd.Flags().StringArrayVar(&statsUsers, "user", nil, "Limit the report to these usernames")
}
