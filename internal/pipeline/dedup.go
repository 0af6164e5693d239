package pipeline

import (
	"context"
	"log/slog"

	"github.com/pgauin01/hustlebot/internal/model"
)

// DedupStage removes records already processed in earlier runs (by id or
// URL against the persisted history set) and intra-batch duplicates
// (first seen wins). It never writes to history: marking a job as seen is an
// explicit user action, not a fetch side effect.
type DedupStage struct {
	history model.HistoryStore
	logger  *slog.Logger
}

// NewDedupStage creates the dedup/history filter stage.
func NewDedupStage(history model.HistoryStore, logger *slog.Logger) *DedupStage {
	return &DedupStage{history: history, logger: logger}
}

func (st *DedupStage) Name() string     { return "dedup" }
func (st *DedupStage) Reads() []string  { return []string{FieldNormalized} }
func (st *DedupStage) Writes() []string { return []string{FieldNormalized} }

func (st *DedupStage) Run(ctx context.Context, s *State) (Update, error) {
	seen, err := st.history.SeenIDs()
	if err != nil {
		// History unavailable is non-fatal: proceed as if nothing was seen.
		st.logger.Warn("history unavailable, skipping cross-run dedup", "error", err)
		seen = map[string]bool{}
	}

	out := make([]model.Job, 0, len(s.Normalized))
	inBatch := make(map[string]bool, len(s.Normalized))
	for _, job := range s.Normalized {
		if seen[job.ID] || (job.URL != "" && seen[job.URL]) {
			continue
		}
		if inBatch[job.ID] || (job.URL != "" && inBatch[job.URL]) {
			continue
		}
		inBatch[job.ID] = true
		if job.URL != "" {
			inBatch[job.URL] = true
		}
		out = append(out, job)
	}

	st.logger.Info("dedup complete", "in", len(s.Normalized), "out", len(out))
	return SetNormalized(out), nil
}
