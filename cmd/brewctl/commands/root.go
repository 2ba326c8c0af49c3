// Package commands implements the brewctl subcommands.
package commands

import (
	"fmt"
	"os"

	"brewlog/internal/config"
	"brewlog/internal/database"
	"brewlog/internal/middleware"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// cfg is loaded once before any subcommand runs.
	cfg *config.Config

	// openDB is replaced in tests.
	openDB = database.Connect
)

var rootCmd = &cobra.Command{
	Use:   "brewctl",
	Short: "Brewlog admin CLI",
	Long: `brewctl runs maintenance tasks against a Brewlog deployment.

It reads the same .env, config.yml and environment variables as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		middleware.Logger = middleware.NewLogger(cfg.Env, cmd.ErrOrStderr())
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect() (*gorm.DB, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
