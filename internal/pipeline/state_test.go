package pipeline

import (
	"testing"

	"github.com/pgauin01/hustlebot/internal/model"
)

func TestApply_RawAppends(t *testing.T) {
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"remoteok"}})

	s.Apply(AppendRaw([]model.RawItem{{Source: "remoteok", Payload: map[string]any{"id": "1"}}}))
	s.Apply(AppendRaw([]model.RawItem{{Source: "freelancer", Payload: map[string]any{"id": "2"}}}))

	if len(s.RawCollected) != 2 {
		t.Fatalf("raw = %d, want appended total of 2", len(s.RawCollected))
	}
	if s.RawCollected[0].Source != "remoteok" || s.RawCollected[1].Source != "freelancer" {
		t.Errorf("append order broken: %+v", s.RawCollected)
	}
}

func TestApply_ReplaceSemantics(t *testing.T) {
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"remoteok"}})

	s.Apply(SetNormalized([]model.Job{{ID: "a"}, {ID: "b"}}))
	if len(s.Normalized) != 2 {
		t.Fatalf("normalized = %d", len(s.Normalized))
	}

	// Replacing wholesale, not merging.
	s.Apply(SetNormalized([]model.Job{{ID: "c"}}))
	if len(s.Normalized) != 1 || s.Normalized[0].ID != "c" {
		t.Errorf("normalized = %+v, want wholesale replacement", s.Normalized)
	}
}

func TestApply_ReplaceWithEmptyIsDistinctFromUntouched(t *testing.T) {
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"remoteok"}})
	s.Apply(SetQualified([]model.Job{{ID: "a"}}))

	// An update that never touched qualified leaves it alone.
	s.Apply(Update{})
	if len(s.Qualified) != 1 {
		t.Fatalf("untouched field changed: %+v", s.Qualified)
	}

	// An explicit empty replacement clears it.
	s.Apply(SetQualified([]model.Job{}))
	if len(s.Qualified) != 0 {
		t.Errorf("explicit empty replacement must clear the field: %+v", s.Qualified)
	}
}

func TestUpdateFields(t *testing.T) {
	u := SetNormalized([]model.Job{{ID: "a"}})
	fields := u.Fields()
	if len(fields) != 1 || fields[0] != FieldNormalized {
		t.Errorf("Fields() = %v", fields)
	}

	if got := (Update{}).Fields(); len(got) != 0 {
		t.Errorf("empty update declares fields: %v", got)
	}

	raw := AppendRaw([]model.RawItem{{Source: "x"}})
	if fields := raw.Fields(); len(fields) != 1 || fields[0] != FieldRaw {
		t.Errorf("Fields() = %v", fields)
	}
}

func TestInputsValidate(t *testing.T) {
	ok := Inputs{SearchQuery: "go", SelectedSources: []string{"remoteok"}}
	if err := ok.validate(); err != nil {
		t.Errorf("valid inputs rejected: %v", err)
	}

	if err := (Inputs{SelectedSources: []string{"remoteok"}}).validate(); err == nil {
		t.Error("missing query must be rejected")
	}
	if err := (Inputs{SearchQuery: "go"}).validate(); err == nil {
		t.Error("empty source selection must be rejected")
	}
}

func TestNewState(t *testing.T) {
	s := newState(Inputs{
		SearchQuery:      "go developer",
		MustHaveKeywords: []string{"go"},
		SelectedSources:  []string{"remoteok", "freelancer"},
	})

	if s.RunID == "" {
		t.Error("expected a run id")
	}
	if !s.SourceSelected("remoteok") || !s.SourceSelected("freelancer") {
		t.Error("selected sources not registered")
	}
	if s.SourceSelected("upwork") {
		t.Error("unselected source reported as selected")
	}
}
