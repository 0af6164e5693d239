package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgauin01/hustlebot/internal/ai"
	"github.com/pgauin01/hustlebot/internal/config"
	"github.com/pgauin01/hustlebot/internal/model"
	"github.com/pgauin01/hustlebot/internal/notifier"
	"github.com/pgauin01/hustlebot/internal/ratelimit"
	"github.com/pgauin01/hustlebot/internal/retry"
	"github.com/pgauin01/hustlebot/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "hustlebot",
	Short: "Freelance job hunter: fetch, score, apply",
	Long:  "HustleBot searches freelance and remote job boards, scores postings against your profile, and drafts the paperwork for the good ones.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Secrets referenced as ${VAR} in config.yaml may live in .env.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: HUSTLEBOT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > HUSTLEBOT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("HUSTLEBOT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "telegram":
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(cfg.Notification.BotToken, cfg.Notification.ChatID, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func createFetcher(name string, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.SourceFetcher, bool) {
	switch name {
	case source.TagRemoteOK:
		return source.NewRemoteOK(httpClient), true
	case source.TagWeWorkRemotely:
		return source.NewWeWorkRemotely(httpClient), true
	case source.TagFreelancer:
		return source.NewFreelancer(httpClient), true
	case source.TagGoogleSearch:
		return source.NewGoogleSearch(cfg.Google.APIKey, cfg.Google.CX, cfg.Google.GL, cfg.Google.Sites, httpClient), true
	case source.TagUpwork:
		return source.NewUpwork(cfg.Upwork.AccessToken, cfg.Upwork.TenantID, httpClient), true
	default:
		logger.Warn("unsupported source, skipping", "source", name)
		return nil, false
	}
}

// buildFetchers creates a decorated fetcher per configured source:
// rate limiting innermost, retries outermost.
func buildFetchers(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.SourceFetcher {
	var fetchers []model.SourceFetcher
	for _, name := range cfg.Search.Sources {
		fetcher, ok := createFetcher(name, cfg, httpClient, logger)
		if !ok {
			continue
		}

		limiter := ratelimit.NewSourceRateLimiter(cfg.RateLimit.MinDelayFor(name))
		fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter)
		fetcher = retry.NewRetryFetcher(fetcher, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)

		fetchers = append(fetchers, fetcher)
		logger.Info("registered source", "source", name)
	}
	return fetchers
}

// setupAI builds the scorer and drafter when AI is enabled; both are nil otherwise.
func setupAI(cfg *config.Config, logger *slog.Logger) (model.Enricher, model.Drafter) {
	if !cfg.AI.Enabled {
		logger.Info("ai disabled, jobs pass through unscored")
		return nil, nil
	}

	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	logger.Info("ai enabled", "model", cfg.AI.Model, "batch_size", cfg.AI.BatchSize)
	return ai.NewLLMScorer(provider, logger), ai.NewLLMDrafter(provider, logger)
}

// readOptionalFile returns the file's contents, or "" with a warning when the
// path is unset or unreadable.
func readOptionalFile(path, what string, logger *slog.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("could not read "+what, "path", path, "error", err)
		return ""
	}
	return string(data)
}
