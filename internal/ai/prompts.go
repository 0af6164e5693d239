package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/score_jobs.md
var scoreJobsPromptRaw string

//go:embed prompts/draft_proposal.md
var draftProposalPromptRaw string

//go:embed prompts/tailor_resume.md
var tailorResumePromptRaw string

//go:embed prompts/suggest_queries.md
var suggestQueriesPromptRaw string

// Parsed once at package init; reused on every call.
var (
	ScoreJobsTemplate      = template.Must(template.New("score_jobs").Parse(scoreJobsPromptRaw))
	DraftProposalTemplate  = template.Must(template.New("draft_proposal").Parse(draftProposalPromptRaw))
	TailorResumeTemplate   = template.Must(template.New("tailor_resume").Parse(tailorResumePromptRaw))
	SuggestQueriesTemplate = template.Must(template.New("suggest_queries").Parse(suggestQueriesPromptRaw))
)
