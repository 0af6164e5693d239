package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  must_have_keywords:
    - go
    - backend
  sources:
    - remoteok
    - freelancer
fetch_timeout: 45s
run_interval: 2h
db_path: jobs.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Query != "Go Developer" {
		t.Errorf("Query = %q", cfg.Search.Query)
	}
	if len(cfg.Search.MustHaveKeywords) != 2 || cfg.Search.MustHaveKeywords[0] != "go" {
		t.Errorf("MustHaveKeywords = %v", cfg.Search.MustHaveKeywords)
	}
	if len(cfg.Search.Sources) != 2 {
		t.Errorf("Sources = %v", cfg.Search.Sources)
	}
	if cfg.FetchTimeout != 45*time.Second {
		t.Errorf("FetchTimeout = %v, want 45s", cfg.FetchTimeout)
	}
	if cfg.RunInterval != 2*time.Hour {
		t.Errorf("RunInterval = %v, want 2h", cfg.RunInterval)
	}
	if cfg.DBPath != "jobs.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.Notify != 75 || cfg.Thresholds.Persist != 80 || cfg.Thresholds.Derive != 85 {
		t.Errorf("Thresholds = %+v, want 75/80/85 defaults", cfg.Thresholds)
	}
	if cfg.Thresholds.DeriveTop != 3 {
		t.Errorf("DeriveTop = %d, want 3", cfg.Thresholds.DeriveTop)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.AI.BatchSize != 5 {
		t.Errorf("AI.BatchSize = %d, want 5", cfg.AI.BatchSize)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("Retry.MaxRetries = %d, want 3", cfg.Retry.MaxRetries)
	}
	if cfg.DBPath != "hustlebot.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HistoryRetention != 30*24*time.Hour {
		t.Errorf("HistoryRetention = %v, want 30 days", cfg.HistoryRetention)
	}
}

func TestLoad_HistoryRetention(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
history_retention: 168h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryRetention != 168*time.Hour {
		t.Errorf("HistoryRetention = %v, want 168h", cfg.HistoryRetention)
	}

	path = writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
history_retention: 0s
`)
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryRetention != 0 {
		t.Errorf("HistoryRetention = %v, want pruning disabled", cfg.HistoryRetention)
	}

	path = writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
history_retention: -1h
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative retention")
	}
}

func TestLoad_ZeroThresholdIsKept(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
thresholds:
  notify: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.Notify != 0 {
		t.Errorf("Notify = %d, want explicit 0 kept", cfg.Thresholds.Notify)
	}
	if cfg.Thresholds.Persist != 80 {
		t.Errorf("Persist = %d, want default", cfg.Thresholds.Persist)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "secret-token")
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
notification:
  type: telegram
  bot_token: ${TEST_BOT_TOKEN}
  chat_id: "42"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.BotToken != "secret-token" {
		t.Errorf("BotToken = %q, want env expansion", cfg.Notification.BotToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "search: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_MissingQuery(t *testing.T) {
	path := writeConfig(t, `
search:
  sources: [remoteok]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for missing query")
	}
}

func TestLoad_NoSources(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for empty sources")
	}
}

func TestLoad_TelegramWithoutToken(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
notification:
  type: telegram
  chat_id: "42"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for telegram without bot_token")
	}
}

func TestLoad_AIEnabledWithoutKey(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
ai:
  enabled: true
  model: gpt-4o-mini
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for ai without api_key")
	}
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	path := writeConfig(t, `
search:
  query: "Go Developer"
  sources: [remoteok]
thresholds:
  persist: 150
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for threshold > 100")
	}
}

func TestMinDelayFor(t *testing.T) {
	rl := RateLimitConfig{
		MinDelay:        2 * time.Second,
		SourceOverrides: map[string]time.Duration{"remoteok": 10 * time.Second},
	}
	if got := rl.MinDelayFor("remoteok"); got != 10*time.Second {
		t.Errorf("MinDelayFor(remoteok) = %v, want override", got)
	}
	if got := rl.MinDelayFor("freelancer"); got != 2*time.Second {
		t.Errorf("MinDelayFor(freelancer) = %v, want fallback", got)
	}
}
