package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Side-effect stages operate on the qualified sequence independently. Each
// one gates on its own score cutoff and catches its own errors, so a notify
// failure never blocks persist and vice versa.

func aboveThreshold(jobs []model.Job, threshold int) []model.Job {
	var picked []model.Job
	for _, j := range jobs {
		if j.RelevanceScore >= threshold {
			picked = append(picked, j)
		}
	}
	return picked
}

// NotifyStage sends an alert for every qualified job at or above its cutoff.
type NotifyStage struct {
	notifier  model.Notifier
	threshold int
	logger    *slog.Logger
}

// NewNotifyStage creates the notify side effect.
func NewNotifyStage(notifier model.Notifier, threshold int, logger *slog.Logger) *NotifyStage {
	return &NotifyStage{notifier: notifier, threshold: threshold, logger: logger}
}

func (st *NotifyStage) Name() string     { return "notify" }
func (st *NotifyStage) Reads() []string  { return []string{FieldQualified} }
func (st *NotifyStage) Writes() []string { return nil }

func (st *NotifyStage) Run(ctx context.Context, s *State) (Update, error) {
	picked := aboveThreshold(s.Qualified, st.threshold)
	if len(picked) == 0 {
		return Update{}, nil
	}

	if err := st.notifier.Notify(picked); err != nil {
		st.logger.Error("notification failed", "count", len(picked), "error", err)
		return Update{}, nil
	}
	st.logger.Info("notifications sent", "count", len(picked), "threshold", st.threshold)
	return Update{}, nil
}

// PersistStage saves high-quality matches to the match sink. The store's
// insert is idempotent by id, so re-running the pipeline over overlapping
// data does not duplicate rows.
type PersistStage struct {
	matches   model.MatchStore
	threshold int
	logger    *slog.Logger
}

// NewPersistStage creates the persist side effect.
func NewPersistStage(matches model.MatchStore, threshold int, logger *slog.Logger) *PersistStage {
	return &PersistStage{matches: matches, threshold: threshold, logger: logger}
}

func (st *PersistStage) Name() string     { return "persist" }
func (st *PersistStage) Reads() []string  { return []string{FieldQualified} }
func (st *PersistStage) Writes() []string { return nil }

func (st *PersistStage) Run(ctx context.Context, s *State) (Update, error) {
	saved := 0
	for _, job := range aboveThreshold(s.Qualified, st.threshold) {
		if err := st.matches.SaveMatch(job); err != nil {
			st.logger.Error("saving match failed", "job_id", job.ID, "error", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		st.logger.Info("matches persisted", "count", saved, "threshold", st.threshold)
	}
	return Update{}, nil
}

// DeriveStage drafts a proposal and a tailored resume for the top jobs above
// its cutoff and stores them as artifacts keyed by job id. Each artifact is
// attempted independently; a failed draft never blocks the tailored resume
// or the remaining jobs.
type DeriveStage struct {
	drafter   model.Drafter
	artifacts model.ArtifactStore
	profile   string
	resume    string
	threshold int
	top       int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewDeriveStage creates the derive side effect. top caps how many jobs get
// artifacts per run; values below 1 fall back to 3.
func NewDeriveStage(drafter model.Drafter, artifacts model.ArtifactStore, profile, resume string, threshold, top int, timeout time.Duration, logger *slog.Logger) *DeriveStage {
	if top < 1 {
		top = 3
	}
	return &DeriveStage{
		drafter:   drafter,
		artifacts: artifacts,
		profile:   profile,
		resume:    resume,
		threshold: threshold,
		top:       top,
		timeout:   timeout,
		logger:    logger,
	}
}

func (st *DeriveStage) Name() string     { return "derive" }
func (st *DeriveStage) Reads() []string  { return []string{FieldQualified} }
func (st *DeriveStage) Writes() []string { return []string{FieldProposals} }

func (st *DeriveStage) Run(ctx context.Context, s *State) (Update, error) {
	if st.drafter == nil {
		return Update{}, nil
	}

	// Qualified is already sorted by score descending, so the first matches
	// above the cutoff are the top candidates.
	picked := aboveThreshold(s.Qualified, st.threshold)
	if len(picked) > st.top {
		picked = picked[:st.top]
	}
	if len(picked) == 0 {
		return Update{}, nil
	}

	proposals := make(map[string]string, len(picked))
	for _, job := range picked {
		dctx, cancel := context.WithTimeout(ctx, st.timeout)

		if text, err := st.drafter.DraftProposal(dctx, job, st.profile); err != nil {
			st.logger.Error("proposal draft failed", "job_id", job.ID, "error", err)
		} else {
			proposals[job.ID] = text
			st.saveArtifact(job.ID, "proposal", text)
		}

		if st.resume != "" {
			if text, err := st.drafter.TailorResume(dctx, job, st.resume); err != nil {
				st.logger.Error("resume tailoring failed", "job_id", job.ID, "error", err)
			} else {
				st.saveArtifact(job.ID, "resume", text)
			}
		}
		cancel()
	}

	st.logger.Info("artifacts derived", "jobs", len(picked), "proposals", len(proposals))
	return SetProposals(proposals), nil
}

func (st *DeriveStage) saveArtifact(jobID, kind, content string) {
	if st.artifacts == nil {
		return
	}
	if err := st.artifacts.SaveArtifact(jobID, kind, content); err != nil {
		st.logger.Error("saving artifact failed", "job_id", jobID, "kind", kind, "error", err)
	}
}
