package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the HustleBot pipeline.
type Config struct {
	Search       SearchConfig
	Google       GoogleConfig
	Upwork       UpworkConfig
	AI           AIConfig
	Thresholds   ThresholdConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	FetchTimeout time.Duration
	RunInterval  time.Duration
	DBPath       string
	// HistoryRetention bounds how long seen-job entries are kept; entries
	// older than this are pruned before each run. Zero disables pruning.
	HistoryRetention time.Duration
}

// SearchConfig describes what to search for and where.
type SearchConfig struct {
	Query           string
	MustHaveKeywords []string
	Sources         []string
}

// GoogleConfig holds Programmable Search credentials and targets.
type GoogleConfig struct {
	APIKey string   // expanded from env var by Load
	CX     string   // engine id or full Programmable Search URL
	GL     string   // geolocation bias, defaults to "us"
	Sites  []string // job boards to site-restrict queries to
}

// UpworkConfig holds a pre-obtained Upwork API token.
type UpworkConfig struct {
	AccessToken string
	TenantID    string
}

// AIConfig controls the optional LLM scoring and drafting layer.
type AIConfig struct {
	Enabled     bool
	BaseURL     string        // defaults to https://api.openai.com/v1
	Model       string        // model identifier, e.g. "gpt-4o-mini"
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-request timeout
	BatchSize   int           // jobs per scoring request
	ProfilePath string        // candidate profile, plain text
	ResumePath  string        // optional resume for tailoring
}

// ThresholdConfig gates the side-effect stages. Scores are 0-100.
type ThresholdConfig struct {
	Notify    int // minimum score to alert on
	Persist   int // minimum score to save as a match
	Derive    int // minimum score to draft a proposal for
	DeriveTop int // max jobs to draft per run
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type     string // "log" or "telegram"
	BotToken string // required if type is "telegram"
	ChatID   string // required if type is "telegram"
}

// RateLimitConfig controls source-level rate limiting.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same source
	SourceOverrides map[string]time.Duration // per-source overrides
}

// MinDelayFor returns the configured delay for the given source, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.SourceOverrides[source]; ok {
		return d
	}
	return r.MinDelay
}

// RetryConfig controls HTTP retry behavior for source fetchers.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Search           rawSearchConfig       `yaml:"search"`
	Google           rawGoogleConfig       `yaml:"google"`
	Upwork           rawUpworkConfig       `yaml:"upwork"`
	AI               rawAIConfig           `yaml:"ai"`
	Thresholds       rawThresholdConfig    `yaml:"thresholds"`
	Notification     rawNotificationConfig `yaml:"notification"`
	RateLimit        rawRateLimitConfig    `yaml:"rate_limit"`
	Retry            rawRetryConfig        `yaml:"retry"`
	FetchTimeout     string                `yaml:"fetch_timeout"`
	RunInterval      string                `yaml:"run_interval"`
	DBPath           string                `yaml:"db_path"`
	HistoryRetention string                `yaml:"history_retention"`
}

type rawSearchConfig struct {
	Query           string   `yaml:"query"`
	MustHaveKeywords []string `yaml:"must_have_keywords"`
	Sources         []string `yaml:"sources"`
}

type rawGoogleConfig struct {
	APIKey string   `yaml:"api_key"`
	CX     string   `yaml:"cx"`
	GL     string   `yaml:"gl"`
	Sites  []string `yaml:"sites"`
}

type rawUpworkConfig struct {
	AccessToken string `yaml:"access_token"`
	TenantID    string `yaml:"tenant_id"`
}

type rawAIConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key"`
	Timeout     string `yaml:"timeout"`
	BatchSize   int    `yaml:"batch_size"`
	ProfilePath string `yaml:"profile_path"`
	ResumePath  string `yaml:"resume_path"`
}

type rawThresholdConfig struct {
	Notify    *int `yaml:"notify"`
	Persist   *int `yaml:"persist"`
	Derive    *int `yaml:"derive"`
	DeriveTop *int `yaml:"derive_top"`
}

type rawNotificationConfig struct {
	Type     string `yaml:"type"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

type rawRetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchTimeout := 30 * time.Second // default
	if raw.FetchTimeout != "" {
		fetchTimeout, err = time.ParseDuration(raw.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch_timeout %q: %w", raw.FetchTimeout, err)
		}
	}

	runInterval := 1 * time.Hour // default, only used with --loop
	if raw.RunInterval != "" {
		runInterval, err = time.ParseDuration(raw.RunInterval)
		if err != nil {
			return nil, fmt.Errorf("parse run_interval %q: %w", raw.RunInterval, err)
		}
	}

	rateLimitDelay := 2 * time.Second // default
	if raw.RateLimit.MinDelay != "" {
		rateLimitDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	sourceOverrides := make(map[string]time.Duration)
	for source, rawDelay := range raw.RateLimit.SourceOverrides {
		d, err := time.ParseDuration(rawDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.source_overrides[%q]: %w", source, err)
		}
		sourceOverrides[source] = d
	}

	retryBaseDelay := 1 * time.Second // default
	if raw.Retry.BaseDelay != "" {
		retryBaseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}
	maxRetries := raw.Retry.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	aiTimeout := 60 * time.Second // default; batch requests are slow
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}
	batchSize := raw.AI.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = "hustlebot.db"
	}

	historyRetention := 30 * 24 * time.Hour // default
	if raw.HistoryRetention != "" {
		historyRetention, err = time.ParseDuration(raw.HistoryRetention)
		if err != nil {
			return nil, fmt.Errorf("parse history_retention %q: %w", raw.HistoryRetention, err)
		}
	}

	cfg := &Config{
		Search: SearchConfig{
			Query:           raw.Search.Query,
			MustHaveKeywords: raw.Search.MustHaveKeywords,
			Sources:         raw.Search.Sources,
		},
		Google: GoogleConfig{
			APIKey: raw.Google.APIKey,
			CX:     raw.Google.CX,
			GL:     raw.Google.GL,
			Sites:  raw.Google.Sites,
		},
		Upwork: UpworkConfig(raw.Upwork),
		AI: AIConfig{
			Enabled:     raw.AI.Enabled,
			BaseURL:     aiBaseURL,
			Model:       raw.AI.Model,
			APIKey:      raw.AI.APIKey,
			Timeout:     aiTimeout,
			BatchSize:   batchSize,
			ProfilePath: raw.AI.ProfilePath,
			ResumePath:  raw.AI.ResumePath,
		},
		Thresholds: ThresholdConfig{
			Notify:    intOr(raw.Thresholds.Notify, 75),
			Persist:   intOr(raw.Thresholds.Persist, 80),
			Derive:    intOr(raw.Thresholds.Derive, 85),
			DeriveTop: intOr(raw.Thresholds.DeriveTop, 3),
		},
		Notification: NotificationConfig(raw.Notification),
		RateLimit: RateLimitConfig{
			MinDelay:        rateLimitDelay,
			SourceOverrides: sourceOverrides,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  retryBaseDelay,
		},
		FetchTimeout:     fetchTimeout,
		RunInterval:      runInterval,
		DBPath:           dbPath,
		HistoryRetention: historyRetention,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// intOr returns *v when set, def otherwise. Zero is a valid configured value
// for thresholds, hence the pointer.
func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func validate(cfg *Config) error {
	if cfg.Search.Query == "" {
		return fmt.Errorf("search.query is required")
	}
	if len(cfg.Search.Sources) == 0 {
		return fmt.Errorf("at least one source must be selected")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "telegram":
		if cfg.Notification.BotToken == "" {
			return fmt.Errorf("notification.bot_token is required when type is \"telegram\"")
		}
		if cfg.Notification.ChatID == "" {
			return fmt.Errorf("notification.chat_id is required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"telegram\", got %q", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	for name, v := range map[string]int{
		"thresholds.notify":  cfg.Thresholds.Notify,
		"thresholds.persist": cfg.Thresholds.Persist,
		"thresholds.derive":  cfg.Thresholds.Derive,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %d", name, v)
		}
	}

	if cfg.RunInterval <= 0 {
		return fmt.Errorf("run_interval must be positive, got %v", cfg.RunInterval)
	}

	if cfg.HistoryRetention < 0 {
		return fmt.Errorf("history_retention must not be negative, got %v", cfg.HistoryRetention)
	}

	return nil
}
