package pipeline

import (
	"context"
	"log/slog"

	"github.com/pgauin01/hustlebot/internal/model"
)

// NormalizeStage maps heterogeneous raw payloads into Jobs by dispatching on
// the source tag through a registered normalizer map. A single item's failure
// drops that item only; records without any usable identity are dropped too.
// Output order follows input order, so results are deterministic.
type NormalizeStage struct {
	normalizers map[string]model.NormalizeFunc
	logger      *slog.Logger
}

// NewNormalizeStage creates the normalize stage with per-source mappers.
func NewNormalizeStage(normalizers map[string]model.NormalizeFunc, logger *slog.Logger) *NormalizeStage {
	return &NormalizeStage{normalizers: normalizers, logger: logger}
}

func (st *NormalizeStage) Name() string     { return "normalize" }
func (st *NormalizeStage) Reads() []string  { return []string{FieldRaw} }
func (st *NormalizeStage) Writes() []string { return []string{FieldNormalized} }

func (st *NormalizeStage) Run(ctx context.Context, s *State) (Update, error) {
	out := make([]model.Job, 0, len(s.RawCollected))
	dropped := 0

	for _, item := range s.RawCollected {
		fn, ok := st.normalizers[item.Source]
		if !ok {
			st.logger.Warn("no normalizer registered for source", "source", item.Source)
			dropped++
			continue
		}

		job, err := fn(item.Payload)
		if err != nil {
			st.logger.Debug("dropping unparsable item", "source", item.Source, "error", err)
			dropped++
			continue
		}
		if job.ID == "" {
			st.logger.Debug("dropping item without identity", "source", item.Source)
			dropped++
			continue
		}
		out = append(out, job)
	}

	if dropped > 0 {
		st.logger.Info("normalization dropped items", "dropped", dropped, "kept", len(out))
	}
	return SetNormalized(out), nil
}
