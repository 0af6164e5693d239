package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgauin01/hustlebot/internal/ai"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Suggest search queries from your profile",
	Long:  "Asks the LLM for search queries tailored to your profile. Falls back to a generic list when AI is disabled or the call fails.",
	RunE:  runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	queries := ai.FallbackQueries
	if cfg.AI.Enabled {
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
		gen := ai.NewQueryGenerator(provider, logger)

		profile := readOptionalFile(cfg.AI.ProfilePath, "profile", logger)
		suggested, err := gen.SuggestQueries(context.Background(), profile)
		if err != nil {
			logger.Warn("query suggestion failed, using fallback", "error", err)
		} else {
			queries = suggested
		}
	} else {
		logger.Info("ai disabled, using fallback queries")
	}

	fmt.Println("Suggested search queries:")
	for _, q := range queries {
		fmt.Printf("  - %s\n", q)
	}
	return nil
}
