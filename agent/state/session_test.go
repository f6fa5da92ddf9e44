package state

import (
	"testing"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func profileWithID(id string) *contractx.Profile {
	return &contractx.Profile{
		ID:        id,
		URL:       "https://www.linkedin.com/in/jane",
		Name:      "Jane Doe",
		ScrapedAt: testNow(),
	}
}

func TestSetProfileSupersedesArtifacts(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	st.SetProfile(profileWithID("p1"), now)
	st.ApplyDelta(contractx.Delta{
		Analysis: &contractx.AnalysisResult{ID: "a1", ProfileID: "p1", SectionScores: map[string]int{"headline": 5}, CreatedAt: now},
	}, now)
	st.ApplyDelta(contractx.Delta{
		JobFit: &contractx.JobFitScore{ID: "j1", ProfileID: "p1", TargetRole: "Engineer", Score: 70, Rationale: "r", CreatedAt: now},
	}, now)
	st.ApplyDelta(contractx.Delta{
		Rewrite: &contractx.RewriteResult{ID: "r1", ProfileID: "p1", AnalysisID: "a1", Section: "headline", RewrittenText: "x", CreatedAt: now},
	}, now)
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	st.SetProfile(profileWithID("p2"), now.Add(time.Minute))

	if st.Analysis != nil {
		t.Fatalf("analysis survived a superseding scrape")
	}
	if len(st.JobFits) != 0 {
		t.Fatalf("job fits survived a superseding scrape")
	}
	if len(st.Rewrites) != 0 {
		t.Fatalf("rewrites survived a superseding scrape")
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() after supersede error = %v", err)
	}
}

func TestSetProfileSameIDKeepsArtifacts(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	p := profileWithID("p1")
	st.SetProfile(p, now)
	st.ApplyDelta(contractx.Delta{
		Analysis: &contractx.AnalysisResult{ID: "a1", ProfileID: "p1", SectionScores: map[string]int{"about": 6}, CreatedAt: now},
	}, now)

	st.SetProfile(p, now.Add(time.Minute))
	if st.Analysis == nil {
		t.Fatalf("analysis dropped on identical profile")
	}
}

func TestApplyDeltaJobFitKeyedByNormalizedRole(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	st.SetProfile(profileWithID("p1"), now)
	st.ApplyDelta(contractx.Delta{
		JobFit: &contractx.JobFitScore{ID: "j1", ProfileID: "p1", TargetRole: "Senior  Backend Engineer", Score: 60, Rationale: "r", CreatedAt: now},
	}, now)
	st.ApplyDelta(contractx.Delta{
		JobFit: &contractx.JobFitScore{ID: "j2", ProfileID: "p1", TargetRole: "senior backend engineer", Score: 65, Rationale: "r", CreatedAt: now},
	}, now)

	if len(st.JobFits) != 1 {
		t.Fatalf("expected role variants to collapse, got %d entries", len(st.JobFits))
	}
	if got := st.JobFits["senior backend engineer"].Score; got != 65 {
		t.Fatalf("latest score = %d, want 65", got)
	}
}

func TestValidateRejectsCrossProfileArtifacts(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	st.SetProfile(profileWithID("p2"), now)
	st.Analysis = &contractx.AnalysisResult{ID: "a1", ProfileID: "p1", SectionScores: map[string]int{"about": 6}, CreatedAt: now}

	if err := st.Validate(); err == nil {
		t.Fatalf("expected validation failure for stale analysis")
	}
}

func TestValidateRejectsOutOfOrderTurns(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	st.AppendTurn(contractx.TurnRecord{Timestamp: now, UserMessage: "a"})
	st.AppendTurn(contractx.TurnRecord{Timestamp: now.Add(-time.Second), UserMessage: "b"})

	if err := st.Validate(); err == nil {
		t.Fatalf("expected validation failure for out-of-order turns")
	}
}

func TestSnapshotCopiesJobFits(t *testing.T) {
	t.Parallel()

	now := testNow()
	st := NewSessionState("s1", "u1", now)
	st.SetProfile(profileWithID("p1"), now)
	st.ApplyDelta(contractx.Delta{
		JobFit: &contractx.JobFitScore{ID: "j1", ProfileID: "p1", TargetRole: "Engineer", Score: 70, Rationale: "r", CreatedAt: now},
	}, now)

	snap := st.Snapshot(now)
	snap.JobFits["engineer"] = contractx.JobFitScore{Score: 1}
	if st.JobFits["engineer"].Score != 70 {
		t.Fatalf("snapshot mutation leaked into session state")
	}
}

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	if got := NormalizeRole("  Senior   Backend  Engineer "); got != "senior backend engineer" {
		t.Fatalf("NormalizeRole() = %q", got)
	}
}
