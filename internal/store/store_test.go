package store

import (
	"context"
	"path/filepath"
	"testing"

	"lessonforge/internal/generation"
	"lessonforge/internal/routing"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(t *testing.T, state generation.State) *generation.Result {
	t.Helper()
	req, err := generation.NewRequest("learning_objectives", "middle",
		"how bacteria multiply at different temperatures", 5)
	if err != nil {
		t.Fatal(err)
	}
	return &generation.Result{
		Request: req,
		State:   state,
		Routing: routing.Result{
			Domain:     routing.Biology,
			Confidence: 0.8,
		},
		Content:  "Learning Objectives\n...",
		Warnings: []string{"advisory"},
		Attempts: []generation.Attempt{{Number: 1}},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, sampleResult(t, generation.StateSucceeded)); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, sampleResult(t, generation.StateExhausted)); err != nil {
		t.Fatal(err)
	}

	records, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Family != "learning_objectives" {
			t.Errorf("family = %q", r.Family)
		}
		if r.Domain != "biology" {
			t.Errorf("domain = %q", r.Domain)
		}
		if r.Attempts != 1 {
			t.Errorf("attempts = %d", r.Attempts)
		}
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)
	records, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records = %v, want none", records)
	}
}
