package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Field names used in stage read/write declarations and merge bookkeeping.
const (
	FieldQuery      = "search_query"
	FieldKeywords   = "must_have_keywords"
	FieldSources    = "selected_sources"
	FieldRaw        = "raw_collected"
	FieldNormalized = "normalized"
	FieldQualified  = "qualified"
	FieldProposals  = "proposals"
)

// Inputs are the run parameters supplied by the caller. They are copied into
// the State once at entry and are read-only afterwards.
type Inputs struct {
	SearchQuery      string
	MustHaveKeywords []string
	SelectedSources  []string
}

func (in Inputs) validate() error {
	if in.SearchQuery == "" {
		return fmt.Errorf("search_query is required")
	}
	if len(in.SelectedSources) == 0 {
		return fmt.Errorf("at least one source must be selected")
	}
	return nil
}

// State is the shared pipeline state. It is owned exclusively by the Runner:
// stages read the fields they declare and return a partial Update, they never
// mutate the State directly.
type State struct {
	RunID            string
	SearchQuery      string
	MustHaveKeywords []string
	SelectedSources  map[string]bool

	RawCollected []model.RawItem
	Normalized   []model.Job
	Qualified    []model.Job
	Proposals    map[string]string
}

func newState(in Inputs) *State {
	selected := make(map[string]bool, len(in.SelectedSources))
	for _, s := range in.SelectedSources {
		selected[s] = true
	}
	return &State{
		RunID:            uuid.NewString(),
		SearchQuery:      in.SearchQuery,
		MustHaveKeywords: in.MustHaveKeywords,
		SelectedSources:  selected,
	}
}

// SourceSelected reports whether the given source participates in this run.
func (s *State) SourceSelected(name string) bool {
	return s.SelectedSources[name]
}

// Scored returns how many qualified records carry a non-zero relevance score.
func (s *State) Scored() int {
	n := 0
	for _, j := range s.Qualified {
		if j.RelevanceScore > 0 {
			n++
		}
	}
	return n
}

// Update is a partial state change returned by a stage. RawCollected merges
// by appending (commutative across fetch units); every other field replaces
// wholesale. An untouched field stays untouched on Apply, and replacing with
// an empty slice is a valid, distinct outcome.
type Update struct {
	rawAppend []model.RawItem

	normalized    []model.Job
	normalizedSet bool

	qualified    []model.Job
	qualifiedSet bool

	proposals    map[string]string
	proposalsSet bool
}

// AppendRaw returns an Update that appends items to raw_collected.
func AppendRaw(items []model.RawItem) Update {
	return Update{rawAppend: items}
}

// SetNormalized returns an Update that replaces the normalized sequence.
func SetNormalized(jobs []model.Job) Update {
	return Update{normalized: jobs, normalizedSet: true}
}

// SetQualified returns an Update that replaces the qualified sequence.
func SetQualified(jobs []model.Job) Update {
	return Update{qualified: jobs, qualifiedSet: true}
}

// SetProposals returns an Update that replaces the drafted-proposal map.
func SetProposals(p map[string]string) Update {
	return Update{proposals: p, proposalsSet: true}
}

// Fields lists the state fields this update writes.
func (u Update) Fields() []string {
	var fields []string
	if len(u.rawAppend) > 0 {
		fields = append(fields, FieldRaw)
	}
	if u.normalizedSet {
		fields = append(fields, FieldNormalized)
	}
	if u.qualifiedSet {
		fields = append(fields, FieldQualified)
	}
	if u.proposalsSet {
		fields = append(fields, FieldProposals)
	}
	return fields
}

// Apply merges an Update into the state according to the per-field rules.
func (s *State) Apply(u Update) {
	s.RawCollected = append(s.RawCollected, u.rawAppend...)
	if u.normalizedSet {
		s.Normalized = u.normalized
	}
	if u.qualifiedSet {
		s.Qualified = u.qualified
	}
	if u.proposalsSet {
		s.Proposals = u.proposals
	}
}
