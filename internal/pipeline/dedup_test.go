package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/pgauin01/hustlebot/internal/model"
)

func TestDedupStage_DropsSeenByIDAndURL(t *testing.T) {
	history := &fakeHistory{seen: map[string]bool{
		"seen-id":                     true,
		"https://jobs.example/seen-2": true,
	}}
	stage := NewDedupStage(history, discardLogger())
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"mock"}})
	s.Apply(SetNormalized([]model.Job{
		{ID: "seen-id", URL: "https://jobs.example/1"},
		{ID: "fresh-2", URL: "https://jobs.example/seen-2"},
		{ID: "fresh-3", URL: "https://jobs.example/3"},
	}))

	update, err := stage.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Apply(update)

	if len(s.Normalized) != 1 || s.Normalized[0].ID != "fresh-3" {
		t.Errorf("normalized = %+v, want seen id and seen url both dropped", s.Normalized)
	}
}

func TestDedupStage_IntraBatchFirstSeenWins(t *testing.T) {
	stage := NewDedupStage(&fakeHistory{}, discardLogger())
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"mock"}})
	s.Apply(SetNormalized([]model.Job{
		{ID: "dup", Title: "first occurrence"},
		{ID: "dup", Title: "second occurrence"},
		{ID: "x1", URL: "https://jobs.example/shared"},
		{ID: "x2", URL: "https://jobs.example/shared"},
	}))

	update, err := stage.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Apply(update)

	if len(s.Normalized) != 2 {
		t.Fatalf("normalized = %+v", s.Normalized)
	}
	if s.Normalized[0].Title != "first occurrence" {
		t.Errorf("first occurrence must win, got %q", s.Normalized[0].Title)
	}
	if s.Normalized[1].ID != "x1" {
		t.Errorf("url duplicate handling kept %q", s.Normalized[1].ID)
	}
}

func TestDedupStage_HistoryUnavailableDegradesToIntraBatch(t *testing.T) {
	history := &fakeHistory{seenErr: errors.New("db locked")}
	stage := NewDedupStage(history, discardLogger())
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"mock"}})
	s.Apply(SetNormalized([]model.Job{
		{ID: "a"},
		{ID: "a"},
		{ID: "b"},
	}))

	update, err := stage.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("history failure must not fail the stage: %v", err)
	}
	s.Apply(update)

	if len(s.Normalized) != 2 {
		t.Errorf("normalized = %+v, want intra-batch dedup to still apply", s.Normalized)
	}
}

func TestDedupStage_NeverWritesHistory(t *testing.T) {
	history := &fakeHistory{}
	stage := NewDedupStage(history, discardLogger())
	s := newState(Inputs{SearchQuery: "go", SelectedSources: []string{"mock"}})
	s.Apply(SetNormalized([]model.Job{{ID: "a"}, {ID: "b"}}))

	if _, err := stage.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.marked) != 0 {
		t.Errorf("dedup marked history: %v", history.marked)
	}
}
