package main

import (
	"fmt"
	"os"

	"github.com/pomegranateis/webfinalserver/internal/config"
	"github.com/pomegranateis/webfinalserver/internal/database"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/models"
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
		Use:   "migrate",
		Short: "Manage the webfinal database schema",
		// Bare `migrate` behaves like `migrate up`
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				return runUp(cmd, db)
			})
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create or update every table and index",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *gorm.DB) error {
					return runUp(cmd, db)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which tables exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *gorm.DB) error {
					return printStatus(cmd, db)
				})
			},
		},
		newDropCmd(),
	)
	return root
}

func newDropCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table (destroys all data)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to drop tables without --yes")
			}
			return withDB(func(db *gorm.DB) error {
				return runDrop(cmd, db)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping all tables")
	return cmd
}

// withDB connects using the environment configuration and closes the connection after fn
func withDB(fn func(db *gorm.DB) error) error {
	cfg := config.Read()
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	if err := database.Initialize(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return fn(database.DB)
}

func runUp(cmd *cobra.Command, db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	cmd.Println("All migrations completed successfully")
	return nil
}

type tableState struct {
	Name   string
	Exists bool
}

func tableStatus(db *gorm.DB) ([]tableState, error) {
	var states []tableState
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		states = append(states, tableState{
			Name:   stmt.Schema.Table,
			Exists: db.Migrator().HasTable(model),
		})
	}
	return states, nil
}

func printStatus(cmd *cobra.Command, db *gorm.DB) error {
	states, err := tableStatus(db)
	if err != nil {
		return err
	}
	for _, s := range states {
		mark := "missing"
		if s.Exists {
			mark = "ok"
		}
		cmd.Printf("%-10s %s\n", s.Name, mark)
	}
	return nil
}

func runDrop(cmd *cobra.Command, db *gorm.DB) error {
	all := models.All()
	// Reverse dependency order: follows and comments reference users and posts
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	cmd.Println("All tables dropped")
	return nil
}
