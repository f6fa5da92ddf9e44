package memoryagent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
)

type fakeMemoryStore struct {
	putErr error
	puts   map[string]string
}

func (f *fakeMemoryStore) Get(ctx context.Context, userID, key string) (contractx.Fact, bool, error) {
	value, ok := f.puts[key]
	return contractx.Fact{UserID: userID, Key: key, Value: value}, ok, nil
}

func (f *fakeMemoryStore) Put(ctx context.Context, userID, key, value string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.puts == nil {
		f.puts = make(map[string]string)
	}
	f.puts[key] = value
	return nil
}

func (f *fakeMemoryStore) List(ctx context.Context, userID string) ([]contractx.Fact, error) {
	var facts []contractx.Fact
	for key, value := range f.puts {
		facts = append(facts, contractx.Fact{UserID: userID, Key: key, Value: value})
	}
	return facts, nil
}

func fullSnapshot() contractx.Snapshot {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return contractx.Snapshot{
		SessionID: "s1",
		UserID:    "u1",
		Profile: &contractx.Profile{
			ID:        "p1",
			URL:       "https://www.linkedin.com/in/jane",
			Name:      "Jane Doe",
			ScrapedAt: now,
		},
		Analysis: &contractx.AnalysisResult{
			ID:        "a1",
			ProfileID: "p1",
			Summary:   "Solid profile.",
			Gaps:      []string{"weak headline"},
			CreatedAt: now,
		},
		JobFits: map[string]contractx.JobFitScore{
			"backend engineer": {ID: "j1", ProfileID: "p1", TargetRole: "Backend Engineer", Score: 72, Rationale: "r", CreatedAt: now},
		},
		Rewrites: []contractx.RewriteResult{
			{ID: "r1", ProfileID: "p1", AnalysisID: "a1", Section: "headline", RewrittenText: "old draft", CreatedAt: now},
			{ID: "r2", ProfileID: "p1", AnalysisID: "a1", Section: "headline", RewrittenText: "new draft", CreatedAt: now.Add(time.Minute)},
		},
		Now: now,
	}
}

func TestRunPersistsArtifactFacts(t *testing.T) {
	t.Parallel()

	store := &fakeMemoryStore{}
	agent := New(store)

	if _, err := agent.Run(context.Background(), fullSnapshot(), contractx.TurnInput{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := store.puts[KeyProfileRef]; !strings.Contains(got, "linkedin.com/in/jane") {
		t.Fatalf("profile_ref = %q", got)
	}
	if got := store.puts[KeyLastAnalysis]; !strings.Contains(got, "Solid profile.") {
		t.Fatalf("last_analysis = %q", got)
	}
	if got := store.puts[KeyJobFitPrefix+"backend engineer"]; !strings.Contains(got, "72") {
		t.Fatalf("job fit fact = %q", got)
	}
	// Only the newest rewrite per section survives.
	if got := store.puts[KeyRewritePref+"headline"]; got != "new draft" {
		t.Fatalf("rewrite fact = %q", got)
	}
	if _, ok := store.puts[KeyLastFailure]; ok {
		t.Fatalf("unexpected failure fact on a clean turn")
	}
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()

	store := &fakeMemoryStore{}
	agent := New(store)
	snap := fullSnapshot()

	if _, err := agent.Run(context.Background(), snap, contractx.TurnInput{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	first := make(map[string]string, len(store.puts))
	for k, v := range store.puts {
		first[k] = v
	}

	if _, err := agent.Run(context.Background(), snap, contractx.TurnInput{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(store.puts) != len(first) {
		t.Fatalf("replay grew the store: %d vs %d keys", len(store.puts), len(first))
	}
	for k, v := range first {
		if store.puts[k] != v {
			t.Fatalf("replay changed %q", k)
		}
	}
}

func TestRunRecordsFailureInsteadOfArtifacts(t *testing.T) {
	t.Parallel()

	store := &fakeMemoryStore{}
	agent := New(store)

	_, err := agent.Run(context.Background(), fullSnapshot(), contractx.TurnInput{FailureKind: "prerequisite_missing"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := store.puts[KeyLastFailure]; got != "prerequisite_missing" {
		t.Fatalf("last_failure = %q", got)
	}
	if len(store.puts) != 1 {
		t.Fatalf("failure turn wrote extra facts: %v", store.puts)
	}
}

func TestRunSurfacesStoreErrors(t *testing.T) {
	t.Parallel()

	store := &fakeMemoryStore{putErr: contractx.ErrStorageUnavailable}
	agent := New(store)

	_, err := agent.Run(context.Background(), fullSnapshot(), contractx.TurnInput{})
	if !errors.Is(err, contractx.ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}
