package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NOLLEN17/bookshelf/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "Personal book catalog API",
	Long: `bookshelf serves a small JSON API where every user keeps a private list of books.

Settings come from the environment, optionally seeded from a .env file.
Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File to read environment variables from (missing file is ignored)")
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
