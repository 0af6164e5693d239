package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// FallbackQueries is used when the LLM is unavailable or misconfigured.
var FallbackQueries = []string{
	"Python Developer",
	"Full Stack Engineer",
	"AI Engineer",
}

var queriesSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"queries": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 3,
			"maxItems": 3,
		},
	},
	"required": []string{"queries"},
}

const querySystemPrompt = "You are a job search strategist. You turn candidate profiles into effective job board queries."

// QueryGenerator suggests job search queries from a candidate profile.
type QueryGenerator struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewQueryGenerator creates a generator backed by provider.
func NewQueryGenerator(provider LLMProvider, logger *slog.Logger) *QueryGenerator {
	return &QueryGenerator{provider: provider, logger: logger}
}

// SuggestQueries returns 3 short search queries derived from profile.
// Callers should fall back to FallbackQueries on error.
func (g *QueryGenerator) SuggestQueries(ctx context.Context, profile string) ([]string, error) {
	var promptBuf bytes.Buffer
	if err := SuggestQueriesTemplate.Execute(&promptBuf, struct{ Profile string }{
		Profile: truncate(profile, maxProfileChars),
	}); err != nil {
		return nil, fmt.Errorf("render queries prompt: %w", err)
	}

	raw, err := g.provider.CompleteJSON(ctx, querySystemPrompt, promptBuf.String(), "search_queries", queriesSchema)
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal queries: %w", err)
	}
	if len(parsed.Queries) == 0 {
		return nil, fmt.Errorf("llm returned no queries")
	}
	return parsed.Queries, nil
}
