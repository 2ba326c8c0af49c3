package commands

import (
	"fmt"
	"time"

	"brewlog/internal/middleware"

	"github.com/spf13/cobra"
)

var (
	tokenUserID uint
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed access token for local development",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenUserID == 0 {
			return fmt.Errorf("--user is required")
		}
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to mint tokens in %s", cfg.Env)
		}
		tok, err := middleware.SignToken(cfg, tokenUserID, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().UintVar(&tokenUserID, "user", 0, "Profile ID to use as the token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}
