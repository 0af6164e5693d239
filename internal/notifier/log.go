package notifier

import (
	"log/slog"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes job matches to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with source, title, score, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"source", j.Source, "title", j.Title, "score", j.RelevanceScore, "url", j.URL}
		if j.Company != "" {
			args = append(args, "company", j.Company)
		}
		n.logger.Info("job match", args...)
	}
	return nil
}
