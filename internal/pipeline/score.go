package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// ScoreStage delegates scoring to the Enricher in fixed-size batches to
// respect payload limits. A failed batch never loses records: they pass
// through unscored (score 0) so the run can still report them. Results are
// mapped back by job id; the final sequence is sorted by relevance score
// descending, ties keeping their prior relative order.
type ScoreStage struct {
	enricher  model.Enricher // nil disables scoring (pass-through)
	profile   string
	batchSize int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScoreStage creates the score stage. batchSize values below 1 fall back
// to 5, the payload-safe default.
func NewScoreStage(enricher model.Enricher, profile string, batchSize int, timeout time.Duration, logger *slog.Logger) *ScoreStage {
	if batchSize < 1 {
		batchSize = 5
	}
	return &ScoreStage{
		enricher:  enricher,
		profile:   profile,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger,
	}
}

func (st *ScoreStage) Name() string     { return "score" }
func (st *ScoreStage) Reads() []string  { return []string{FieldQualified} }
func (st *ScoreStage) Writes() []string { return []string{FieldQualified} }

func (st *ScoreStage) Run(ctx context.Context, s *State) (Update, error) {
	jobs := s.Qualified
	if st.enricher == nil || len(jobs) == 0 {
		return SetQualified(jobs), nil
	}

	out := make([]model.Job, 0, len(jobs))
	for start := 0; start < len(jobs); start += st.batchSize {
		end := min(start+st.batchSize, len(jobs))
		batch := jobs[start:end]

		results, err := st.scoreBatch(ctx, batch)
		if err != nil {
			// One failed attempt per batch is terminal for this run; the
			// batch's records survive unscored.
			st.logger.Warn("score batch failed, keeping records unscored",
				"batch_start", start, "size", len(batch), "error", err)
			out = append(out, batch...)
			continue
		}

		for _, job := range batch {
			if res, ok := results[job.ID]; ok {
				job.RelevanceScore = clampScore(res.Score)
				job.Reasoning = res.Reasoning
				job.GapAnalysis = formatGapAnalysis(res)
			}
			out = append(out, job)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	st.logger.Info("scoring complete", "jobs", len(out), "scored", countScored(out))
	return SetQualified(out), nil
}

func (st *ScoreStage) scoreBatch(ctx context.Context, batch []model.Job) (map[string]model.ScoreResult, error) {
	bctx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()
	return st.enricher.ScoreBatch(bctx, batch, st.profile)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func formatGapAnalysis(res model.ScoreResult) string {
	if res.Gaps == "" && res.Advice == "" {
		return ""
	}
	return fmt.Sprintf("Gaps: %s\nStrategy: %s", orNone(res.Gaps), orNone(res.Advice))
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func countScored(jobs []model.Job) int {
	n := 0
	for _, j := range jobs {
		if j.RelevanceScore > 0 {
			n++
		}
	}
	return n
}
