package filter

import (
	"strings"

	"github.com/pgauin01/hustlebot/internal/model"
)

// MustHave is the hard keyword filter: a job passes only if every must-have
// keyword appears as a case-insensitive substring of title + description.
// No stemming or tokenization, literal containment only.
//
// Exemption: jobs from snippet-only sources pass unconditionally — their
// payloads carry short snippets, so there is no description worth searching.
type MustHave struct {
	snippetSources map[string]bool
}

// NewMustHave returns a filter that trusts the given snippet-only sources.
func NewMustHave(snippetSources []string) *MustHave {
	trusted := make(map[string]bool, len(snippetSources))
	for _, s := range snippetSources {
		trusted[s] = true
	}
	return &MustHave{snippetSources: trusted}
}

// Match returns true if job contains every keyword (case-insensitive
// substring of title + description), or comes from a trusted snippet-only
// source. An empty keyword list passes everything.
func (f *MustHave) Match(job model.Job, mustHaves []string) bool {
	if len(mustHaves) == 0 {
		return true
	}
	if f.snippetSources[job.Source] {
		return true
	}

	text := strings.ToLower(job.Title + " " + job.Description)
	for _, kw := range mustHaves {
		if !strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
