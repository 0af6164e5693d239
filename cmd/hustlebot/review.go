package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pgauin01/hustlebot/internal/review"
	"github.com/pgauin01/hustlebot/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending matches interactively",
	Long:  "Opens a TUI over the saved matches. Track a match to add it to the application tracker, or dismiss it; either way it is marked seen and won't resurface.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	return review.RunReviewTUI(sqlStore)
}
