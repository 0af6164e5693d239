package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pgauin01/hustlebot/internal/model"
)

// stubProvider returns canned responses and records the prompts it received.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Complete(_ context.Context, _, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubProvider) CompleteJSON(_ context.Context, _, prompt, _ string, _ map[string]any) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScoreBatch_MapsResultsByID(t *testing.T) {
	provider := &stubProvider{
		response: `{"results":[
			{"id":"a","score":92,"reasoning":"great fit","gaps":"none","advice":"apply fast"},
			{"id":"b","score":40,"reasoning":"weak fit","gaps":"no Rust","advice":"none"}
		]}`,
	}
	scorer := NewLLMScorer(provider, discardLogger())

	jobs := []model.Job{
		{ID: "a", Title: "Go Developer", Description: "backend work"},
		{ID: "b", Title: "Rust Developer", Description: "systems work"},
	}
	results, err := scorer.ScoreBatch(context.Background(), jobs, "Go expert")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["a"].Score != 92 || results["a"].Reasoning != "great fit" {
		t.Errorf("result a = %+v", results["a"])
	}
	if results["b"].Gaps != "no Rust" {
		t.Errorf("result b gaps = %q, want %q", results["b"].Gaps, "no Rust")
	}
}

func TestScoreBatch_DropsUnknownIDs(t *testing.T) {
	provider := &stubProvider{
		response: `{"results":[{"id":"ghost","score":99,"reasoning":"","gaps":"","advice":""}]}`,
	}
	scorer := NewLLMScorer(provider, discardLogger())

	results, err := scorer.ScoreBatch(context.Background(), []model.Job{{ID: "a", Title: "Job"}}, "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 for ids not in the batch", len(results))
	}
}

func TestScoreBatch_ProviderError(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("boom")}
	scorer := NewLLMScorer(provider, discardLogger())

	_, err := scorer.ScoreBatch(context.Background(), []model.Job{{ID: "a"}}, "profile")
	if err == nil {
		t.Fatal("expected error when provider fails")
	}
}

func TestScoreBatch_EmptyBatch(t *testing.T) {
	provider := &stubProvider{}
	scorer := NewLLMScorer(provider, discardLogger())

	results, err := scorer.ScoreBatch(context.Background(), nil, "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if len(provider.prompts) != 0 {
		t.Error("empty batch must not call the provider")
	}
}

func TestScoreBatch_TruncatesLongDescriptions(t *testing.T) {
	provider := &stubProvider{response: `{"results":[]}`}
	scorer := NewLLMScorer(provider, discardLogger())

	long := strings.Repeat("x", maxDescriptionChars+500)
	_, err := scorer.ScoreBatch(context.Background(), []model.Job{{ID: "a", Description: long}}, "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(provider.prompts))
	}
	if strings.Contains(provider.prompts[0], long) {
		t.Error("prompt contains full untruncated description")
	}
	if !strings.Contains(provider.prompts[0], long[:maxDescriptionChars]) {
		t.Error("prompt missing truncated description")
	}
}

func TestScoreBatch_PromptContainsJobsJSON(t *testing.T) {
	provider := &stubProvider{response: `{"results":[]}`}
	scorer := NewLLMScorer(provider, discardLogger())

	_, err := scorer.ScoreBatch(context.Background(), []model.Job{
		{ID: "rok-1", Title: "Go Developer", Description: "build services"},
	}, "Go expert profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := provider.prompts[0]
	for _, want := range []string{"rok-1", "Go Developer", "Go expert profile"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// The jobs block must be valid JSON the model can parse back.
	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	if start < 0 || end < start {
		t.Fatal("prompt missing JSON array")
	}
	var decoded []promptJob
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &decoded); err != nil {
		t.Fatalf("jobs block is not valid JSON: %v", err)
	}
}

func TestSuggestQueries_ParsesList(t *testing.T) {
	provider := &stubProvider{response: `{"queries":["Go Backend Developer","DevOps Engineer","Platform Engineer"]}`}
	gen := NewQueryGenerator(provider, discardLogger())

	queries, err := gen.SuggestQueries(context.Background(), "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 3 || queries[0] != "Go Backend Developer" {
		t.Errorf("queries = %v", queries)
	}
}

func TestSuggestQueries_EmptyIsError(t *testing.T) {
	provider := &stubProvider{response: `{"queries":[]}`}
	gen := NewQueryGenerator(provider, discardLogger())

	if _, err := gen.SuggestQueries(context.Background(), "profile"); err == nil {
		t.Fatal("expected error for empty query list")
	}
}

func TestDraftProposal_TrimsAndReturnsText(t *testing.T) {
	provider := &stubProvider{response: "\n  I can ship this in a week.  \n"}
	drafter := NewLLMDrafter(provider, discardLogger())

	got, err := drafter.DraftProposal(context.Background(), model.Job{ID: "a", Title: "Go Developer"}, "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "I can ship this in a week." {
		t.Errorf("got %q", got)
	}
}

func TestTailorResume_IncludesResumeInPrompt(t *testing.T) {
	provider := &stubProvider{response: "tailored"}
	drafter := NewLLMDrafter(provider, discardLogger())

	_, err := drafter.TailorResume(context.Background(), model.Job{Title: "Go Developer"}, "original resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.prompts[0], "original resume text") {
		t.Error("prompt missing resume text")
	}
}
