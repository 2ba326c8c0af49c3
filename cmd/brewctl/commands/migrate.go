package commands

import (
	"fmt"
	"strconv"

	"brewlog/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema operations",
	Long: `Run database schema operations.

Subcommands:
  up      - Apply pending SQL migrations
  auto    - Run GORM AutoMigrate for every model
  status  - Show applied and pending migrations
  down    - Roll back one migration by version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(cmd.Context(), db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		cmd.Println("sql migrations applied")
		return nil
	},
}

var migrateAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run GORM AutoMigrate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		cmd.Println("automigrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		plan, err := database.PlanSchema(cfg)
		if err != nil {
			return err
		}
		applied, pending, err := database.MigrationStatus(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		cmd.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
			plan.Mode, cfg.Env, plan.Migrations, plan.AutoMigrate, len(applied), len(pending))
		for _, m := range pending {
			cmd.Printf("pending: %s\n", m.String())
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Roll back a migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		db, err := connect()
		if err != nil {
			return err
		}
		if err := database.RollbackMigration(cmd.Context(), db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		cmd.Printf("rolled back migration %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateAutoCmd, migrateStatusCmd, migrateDownCmd)
}
