package model

import (
	"context"
	"time"
)

// Job is the normalized representation of a posting from any source.
type Job struct {
	ID          string     // source-provided key, falls back to URL
	Source      string     // which fetcher produced it ("remoteok", "upwork", ...)
	Title       string     // job title
	Company     string     // company or client name, "Unknown" when absent
	Description string     // sanitized text, HTML stripped during normalization
	URL         string     // canonical link, secondary identity key
	BudgetMin   float64    // 0 means undisclosed, not free
	BudgetMax   float64    // 0 means undisclosed, not free
	Currency    string     // currency code, defaults to USD
	Skills      []string   // ordered skill tags
	Location    string     // location string, "Unknown" when absent
	IsRemote    bool       // per-source default when the source doesn't report it
	PostedAt    *time.Time // nullable (not all sources provide a parsable date)
	PostedRaw   string     // original date string kept when parsing fails

	// Analysis fields, populated by the score stage. A zero RelevanceScore
	// means "not yet scored", distinct from "scored zero".
	RelevanceScore int
	Reasoning      string
	GapAnalysis    string
}

// RawItem is one untyped payload as fetched, tagged with its source.
// The fetch/normalize boundary is intentionally weakly typed: sources are
// heterogeneous and the normalizer absorbs that variability.
type RawItem struct {
	Source  string
	Payload map[string]any
}

// NormalizeFunc maps one raw source payload into a Job. Returning an error
// drops that item only; the batch continues.
type NormalizeFunc func(payload map[string]any) (Job, error)

// Application is one row of the application tracker.
type Application struct {
	JobID       string
	Title       string
	Company     string
	Platform    string
	URL         string
	AppliedDate time.Time
	Status      string // Applied, Interview, Offer, Rejected, Saved
	Notes       string
}

// SourceFetcher pulls raw postings from one source. Implementations may fail;
// the fetch stage contains the failure and degrades to an empty contribution.
type SourceFetcher interface {
	Source() string
	Fetch(ctx context.Context, query string) ([]map[string]any, error)
}

// ScoreResult is one record's verdict from the scoring capability.
type ScoreResult struct {
	Score     int
	Reasoning string
	Gaps      string
	Advice    string
}

// Enricher scores one batch of jobs against a candidate profile, keyed by job
// ID. It may fail or return partial data; the score stage validates the shape
// and keeps unmatched records unscored.
type Enricher interface {
	ScoreBatch(ctx context.Context, jobs []Job, profile string) (map[string]ScoreResult, error)
}

// Drafter generates per-job application artifacts.
type Drafter interface {
	DraftProposal(ctx context.Context, job Job, profile string) (string, error)
	TailorResume(ctx context.Context, job Job, resume string) (string, error)
}

// Notifier delivers alerts for scored matches. Fire-and-forget: failures are
// logged by the caller, never fatal.
type Notifier interface {
	Notify(jobs []Job) error
}

// HistoryStore tracks which job identities have been processed in earlier
// runs. MarkSeen fires only on explicit user actions (track/dismiss), never
// automatically mid-pipeline.
type HistoryStore interface {
	SeenIDs() (map[string]bool, error)
	MarkSeen(id string) error
}

// MatchStore is the "new matches" sink written by the persist side effect.
// SaveMatch must be idempotent by job ID.
type MatchStore interface {
	SaveMatch(job Job) error
}

// TrackerStore records applications the user decided to pursue.
type TrackerStore interface {
	SaveApplication(job Job, status string) error
	Applications() ([]Application, error)
	UpdateStatus(jobID, status, notes string) error
}

// ArtifactStore keeps derived artifacts (proposals, tailored resumes) by
// record id and kind.
type ArtifactStore interface {
	SaveArtifact(jobID, kind, content string) error
	Artifact(jobID, kind string) (string, error)
}
