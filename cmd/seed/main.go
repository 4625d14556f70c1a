package main

import (
	"fmt"
	"os"

	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/config"
	"github.com/pomegranateis/webfinalserver/internal/database"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/seed"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Populate or clean development data",
		SilenceUsage: true,
	}
	root.AddCommand(newDevCmd(), newCleanCmd())
	return root
}

func newDevCmd() *cobra.Command {
	opts := seed.DevOptions()
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Seed fake users, posts, comments and follows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				return runDev(cmd, seed.NewSeeder(db, auth.NewPasswordHasher(cfg.Auth.BcryptCost)), opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	cmd.Flags().IntVar(&opts.Comments, "comments", opts.Comments, "Number of comments")
	cmd.Flags().IntVar(&opts.Follows, "follows", opts.Follows, "Number of follow edges")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed for reproducible data (0 = random)")
	return cmd
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every seeded record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				return runClean(cmd, seed.NewSeeder(db, auth.NewPasswordHasher(cfg.Auth.BcryptCost)))
			})
		},
	}
}

func withDB(fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg := config.Read()
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	if err := database.Initialize(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		return err
	}
	return fn(cfg, database.DB)
}

func runDev(cmd *cobra.Command, seeder *seed.Seeder, opts seed.Options) error {
	result, err := seeder.SeedDev(cmd.Context(), opts)
	if err != nil {
		return err
	}
	cmd.Printf("Seeded %d users, %d posts, %d comments, %d follows\n",
		result.Users, result.Posts, result.Comments, result.Follows)
	cmd.Printf("Every seeded account uses the password %q\n", seed.DefaultPassword)
	return nil
}

func runClean(cmd *cobra.Command, seeder *seed.Seeder) error {
	if err := seeder.Clean(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Seed data removed")
	return nil
}
