package commands

import (
	"encoding/json"

	"brewlog/internal/seed"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo data",
	Long: `Create demo profiles, friendships, posts, likes and comments.

Examples:
  brewctl seed                          # 20 profiles with default activity
  brewctl seed --profiles 200 --clean   # wipe, then seed a larger set
  brewctl seed --rand-seed 42           # repeatable content`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		summary, err := seed.Seed(cmd.Context(), db, seedOpts)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Profiles, "profiles", seedOpts.Profiles, "Number of profiles to create")
	f.IntVar(&seedOpts.PostsPerProfile, "posts", seedOpts.PostsPerProfile, "Posts per profile")
	f.IntVar(&seedOpts.FriendsPerProfile, "friends", seedOpts.FriendsPerProfile, "Friend links attempted per profile")
	f.IntVar(&seedOpts.MaxLikesPerPost, "max-likes", seedOpts.MaxLikesPerPost, "Upper bound of likes per post")
	f.IntVar(&seedOpts.MaxCommentsPerPost, "max-comments", seedOpts.MaxCommentsPerPost, "Upper bound of comments per post")
	f.IntVar(&seedOpts.MaxDays, "days", seedOpts.MaxDays, "Spread post times over this many past days")
	f.Int64Var(&seedOpts.RandSeed, "rand-seed", 0, "Random seed; 0 picks one")
	f.BoolVar(&seedOpts.Clean, "clean", false, "Delete existing data first")
}
