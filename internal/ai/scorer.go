package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pgauin01/hustlebot/internal/model"
)

const (
	// maxDescriptionChars bounds how much of each job description goes into
	// the scoring prompt.
	maxDescriptionChars = 2000
	// maxProfileChars bounds the candidate profile in every prompt.
	maxProfileChars = 3000
)

// batchScoreSchema is the JSON Schema enforced server-side via OpenAI
// structured outputs. The schema matches rawBatchScores exactly so the
// response can be parsed directly.
var batchScoreSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"id":        map[string]any{"type": "string"},
					"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
					"reasoning": map[string]any{"type": "string"},
					"gaps":      map[string]any{"type": "string"},
					"advice":    map[string]any{"type": "string"},
				},
				"required": []string{"id", "score", "reasoning", "gaps", "advice"},
			},
		},
	},
	"required": []string{"results"},
}

const scorerSystemPrompt = "You are a meticulous recruiter matching job postings against a candidate profile."

// LLMScorer implements model.Enricher using an LLM, scoring jobs in batches
// with a single request per batch.
type LLMScorer struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewLLMScorer creates a scorer backed by provider.
func NewLLMScorer(provider LLMProvider, logger *slog.Logger) *LLMScorer {
	return &LLMScorer{provider: provider, logger: logger}
}

// promptJob is the per-job shape embedded in the scoring prompt.
type promptJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// rawBatchScores is the JSON shape returned by the LLM (matches batchScoreSchema).
type rawBatchScores struct {
	Results []struct {
		ID        string `json:"id"`
		Score     int    `json:"score"`
		Reasoning string `json:"reasoning"`
		Gaps      string `json:"gaps"`
		Advice    string `json:"advice"`
	} `json:"results"`
}

// ScoreBatch scores jobs against profile in one LLM call. The returned map is
// keyed by job ID; jobs the model skipped are simply absent from it.
func (s *LLMScorer) ScoreBatch(ctx context.Context, jobs []model.Job, profile string) (map[string]model.ScoreResult, error) {
	if len(jobs) == 0 {
		return map[string]model.ScoreResult{}, nil
	}

	promptJobs := make([]promptJob, 0, len(jobs))
	for _, j := range jobs {
		promptJobs = append(promptJobs, promptJob{
			ID:          j.ID,
			Title:       j.Title,
			Description: truncate(j.Description, maxDescriptionChars),
		})
	}
	jobsJSON, err := json.MarshalIndent(promptJobs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal jobs for prompt: %w", err)
	}

	var promptBuf bytes.Buffer
	if err := ScoreJobsTemplate.Execute(&promptBuf, struct {
		Profile  string
		JobsJSON string
	}{
		Profile:  truncate(profile, maxProfileChars),
		JobsJSON: string(jobsJSON),
	}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := s.provider.CompleteJSON(ctx, scorerSystemPrompt, promptBuf.String(), "batch_scores", batchScoreSchema)
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	var parsed rawBatchScores
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal batch scores: %w", err)
	}

	known := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		known[j.ID] = true
	}

	results := make(map[string]model.ScoreResult, len(parsed.Results))
	for _, r := range parsed.Results {
		if !known[r.ID] {
			s.logger.Debug("scorer returned unknown job id", "id", r.ID)
			continue
		}
		results[r.ID] = model.ScoreResult{
			Score:     r.Score,
			Reasoning: r.Reasoning,
			Gaps:      r.Gaps,
			Advice:    r.Advice,
		}
	}
	return results, nil
}

// truncate cuts s to at most n bytes. Prompt inputs are plain text where a
// byte cut mid-rune is harmless noise at worst.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
