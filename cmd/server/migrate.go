package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NOLLEN17/bookshelf/internal/database"
)

var resetSchema bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create the users and books tables if they do not exist yet.

Examples:
  bookshelf migrate           # Create missing tables, keep data
  bookshelf migrate --reset   # Drop both tables and start empty`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		reset := resetSchema || cfg.ResetDB

		db, err := database.InitDB(cfg.DatabasePath, reset)
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		defer db.Close()

		logger.WithField("path", cfg.DatabasePath).WithField("reset", reset).Info("schema ready")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&resetSchema, "reset", false, "Drop existing tables before creating them")
	rootCmd.AddCommand(migrateCmd)
}
