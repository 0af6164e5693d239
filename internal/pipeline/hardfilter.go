package pipeline

import (
	"context"
	"log/slog"

	"github.com/pgauin01/hustlebot/internal/filter"
	"github.com/pgauin01/hustlebot/internal/model"
)

// HardFilterStage rejects records failing the must-have keyword check and
// promotes the survivors to the qualified sequence. Zero survivors is a
// valid outcome; downstream stages handle an empty sequence gracefully.
type HardFilterStage struct {
	filter *filter.MustHave
	logger *slog.Logger
}

// NewHardFilterStage creates the hard filter stage.
func NewHardFilterStage(f *filter.MustHave, logger *slog.Logger) *HardFilterStage {
	return &HardFilterStage{filter: f, logger: logger}
}

func (st *HardFilterStage) Name() string     { return "hard_filter" }
func (st *HardFilterStage) Reads() []string  { return []string{FieldNormalized, FieldKeywords} }
func (st *HardFilterStage) Writes() []string { return []string{FieldQualified} }

func (st *HardFilterStage) Run(ctx context.Context, s *State) (Update, error) {
	out := make([]model.Job, 0, len(s.Normalized))
	for _, job := range s.Normalized {
		if st.filter.Match(job, s.MustHaveKeywords) {
			out = append(out, job)
		}
	}

	if dropped := len(s.Normalized) - len(out); dropped > 0 {
		st.logger.Info("hard filter dropped jobs", "dropped", dropped, "must_have", s.MustHaveKeywords)
	}
	return SetQualified(out), nil
}
