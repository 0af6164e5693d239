package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgauin01/hustlebot/internal/filter"
	"github.com/pgauin01/hustlebot/internal/model"
	"github.com/pgauin01/hustlebot/internal/pipeline"
	"github.com/pgauin01/hustlebot/internal/scheduler"
	"github.com/pgauin01/hustlebot/internal/source"
	"github.com/pgauin01/hustlebot/internal/store"
)

var (
	huntLoop   bool
	huntDryRun bool
)

// defaultProfile stands in when no profile file is configured or readable, so
// scoring still has something to match against.
const defaultProfile = "Experienced software developer seeking remote freelance and contract work."

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Run the job hunt pipeline",
	Long:  "Fetches postings from the configured sources, filters and scores them, then alerts, saves, and drafts proposals for the best matches.",
	RunE:  runHunt,
}

func init() {
	huntCmd.Flags().BoolVar(&huntLoop, "loop", false, "keep running on the configured interval until interrupted")
	huntCmd.Flags().BoolVar(&huntDryRun, "dry-run", false, "run once without persisting or marking anything seen")
	rootCmd.AddCommand(huntCmd)
}

// huntStores is the persistence surface a hunt run needs. Satisfied by both
// the real SQLite store and the dry-run NopStore.
type huntStores interface {
	model.HistoryStore
	model.MatchStore
	model.ArtifactStore
	Cleanup(olderThan time.Duration) error
}

func runHunt(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"query", cfg.Search.Query,
		"sources", cfg.Search.Sources,
		"must_have", cfg.Search.MustHaveKeywords,
	)

	var stores huntStores
	if huntDryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		stores = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		stores = sqlStore
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	fetchers := buildFetchers(cfg, httpClient, logger)
	if len(fetchers) == 0 {
		logger.Error("no sources to fetch")
		os.Exit(1)
	}

	n := setupNotifier(cfg, httpClient, logger)
	enricher, drafter := setupAI(cfg, logger)
	profile := readOptionalFile(cfg.AI.ProfilePath, "profile", logger)
	if profile == "" {
		profile = defaultProfile
	}
	resume := readOptionalFile(cfg.AI.ResumePath, "resume", logger)

	mustHave := filter.NewMustHave(source.SnippetOnly())

	runner := pipeline.NewRunner(logger,
		pipeline.NewFetchStage(fetchers, cfg.FetchTimeout, logger),
		pipeline.NewNormalizeStage(source.Normalizers(), logger),
		pipeline.NewDedupStage(stores, logger),
		pipeline.NewHardFilterStage(mustHave, logger),
		pipeline.NewScoreStage(enricher, profile, cfg.AI.BatchSize, cfg.AI.Timeout, logger),
		pipeline.NewNotifyStage(n, cfg.Thresholds.Notify, logger),
		pipeline.NewPersistStage(stores, cfg.Thresholds.Persist, logger),
		pipeline.NewDeriveStage(drafter, stores, profile, resume, cfg.Thresholds.Derive, cfg.Thresholds.DeriveTop, cfg.AI.Timeout, logger),
	)

	inputs := pipeline.Inputs{
		SearchQuery:      cfg.Search.Query,
		MustHaveKeywords: cfg.Search.MustHaveKeywords,
		SelectedSources:  cfg.Search.Sources,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) error {
		if cfg.HistoryRetention > 0 {
			if err := stores.Cleanup(cfg.HistoryRetention); err != nil {
				logger.Warn("history cleanup failed", "error", err)
			}
		}
		state, err := runner.Run(ctx, inputs)
		if err != nil {
			return err
		}
		printTopMatches(state)
		return nil
	}

	if huntLoop {
		sched := scheduler.NewScheduler(runOnce, cfg.RunInterval, logger)
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
			os.Exit(1)
		}
		logger.Info("goodbye")
		return nil
	}

	if err := runOnce(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	return nil
}

// printTopMatches writes a short human-readable summary of the run to stdout.
func printTopMatches(state *pipeline.State) {
	if len(state.Qualified) == 0 {
		fmt.Println("\nNo qualified jobs this run.")
		return
	}

	fmt.Printf("\nTop matches (%d qualified):\n", len(state.Qualified))
	limit := 10
	if len(state.Qualified) < limit {
		limit = len(state.Qualified)
	}
	for _, j := range state.Qualified[:limit] {
		marker := " "
		if _, ok := state.Proposals[j.ID]; ok {
			marker = "✍"
		}
		fmt.Printf("  [%3d] %s %-12s %s\n", j.RelevanceScore, marker, j.Source, j.Title)
		if j.URL != "" {
			fmt.Printf("         %s\n", j.URL)
		}
	}
}
