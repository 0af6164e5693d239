package ai

import "context"

// LLMProvider sends prompts to an LLM and returns the raw text response.
// Used only inside this package; the rest of the system sees the Enricher
// and Drafter capabilities.
type LLMProvider interface {
	// Complete returns free text.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// CompleteJSON returns JSON guaranteed to conform to schema via
	// structured outputs.
	CompleteJSON(ctx context.Context, system, prompt, schemaName string, schema map[string]any) (string, error)
}
