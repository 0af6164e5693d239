package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pgauin01/hustlebot/internal/model"
)

// FetchStage runs one fetch unit per selected source, concurrently. Units
// are independent: a unit that errors or times out contributes nothing and
// the others are unaffected. Append order across units is unspecified.
type FetchStage struct {
	fetchers []model.SourceFetcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFetchStage creates the fetch stage. timeout bounds each unit's call.
func NewFetchStage(fetchers []model.SourceFetcher, timeout time.Duration, logger *slog.Logger) *FetchStage {
	return &FetchStage{fetchers: fetchers, timeout: timeout, logger: logger}
}

func (st *FetchStage) Name() string     { return "fetch" }
func (st *FetchStage) Reads() []string  { return []string{FieldQuery, FieldSources} }
func (st *FetchStage) Writes() []string { return []string{FieldRaw} }

// Run fetches all selected sources in parallel and appends their raw
// payloads, tagged with source identity, to raw_collected.
func (st *FetchStage) Run(ctx context.Context, s *State) (Update, error) {
	var (
		mu        sync.Mutex
		collected []model.RawItem
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range st.fetchers {
		if !s.SourceSelected(f.Source()) {
			continue
		}
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, st.timeout)
			defer cancel()

			payloads, err := f.Fetch(fctx, s.SearchQuery)
			if err != nil {
				// Degrade to an empty contribution, never past this boundary.
				st.logger.Warn("source fetch failed", "source", f.Source(), "error", err)
				return nil
			}

			items := make([]model.RawItem, 0, len(payloads))
			for _, p := range payloads {
				items = append(items, model.RawItem{Source: f.Source(), Payload: p})
			}

			mu.Lock()
			collected = append(collected, items...)
			mu.Unlock()

			st.logger.Info("source fetched", "source", f.Source(), "count", len(items))
			return nil
		})
	}
	// Units always return nil; Wait is only a join point.
	_ = g.Wait()

	return AppendRaw(collected), nil
}
