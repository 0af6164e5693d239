package store

import (
	"fmt"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// NopStore is a no-op store used in dry-run mode. It never remembers seen
// jobs and never persists anything, so every run starts from a clean slate.
type NopStore struct{}

var (
	_ model.HistoryStore  = (*NopStore)(nil)
	_ model.MatchStore    = (*NopStore)(nil)
	_ model.ArtifactStore = (*NopStore)(nil)
)

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) SeenIDs() (map[string]bool, error)              { return map[string]bool{}, nil }
func (s *NopStore) MarkSeen(jobID string) error                    { return nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error          { return nil }
func (s *NopStore) SaveMatch(job model.Job) error                  { return nil }
func (s *NopStore) SaveArtifact(jobID, kind, content string) error { return nil }

// Artifact always misses: dry-run saves are discarded, so there is nothing
// to read back.
func (s *NopStore) Artifact(jobID, kind string) (string, error) {
	return "", fmt.Errorf("no %s artifact for %s", kind, jobID)
}
