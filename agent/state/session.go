package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
)

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrTurnsTruncated  = errors.New("turn log is append-only")
)

// SessionState is the short-term memory for one session: the current profile
// snapshot, the artifacts derived from it, and the append-only turn log.
// Only the orchestrator handling the session's current turn mutates it.
type SessionState struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`

	Profile  *contractx.Profile                `json:"profile,omitempty"`
	Analysis *contractx.AnalysisResult         `json:"analysis,omitempty"`
	JobFits  map[string]contractx.JobFitScore  `json:"job_fits,omitempty"`
	Rewrites []contractx.RewriteResult         `json:"rewrites,omitempty"`
	Turns    []contractx.TurnRecord            `json:"turns,omitempty"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, userID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		UserID:    userID,
		JobFits:   make(map[string]contractx.JobFitScore, 4),
		Version:   1,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *SessionState) EnsureJobFitsMap() {
	if s.JobFits == nil {
		s.JobFits = make(map[string]contractx.JobFitScore, 4)
	}
}

// AppendTurn adds a turn record to the append-only log.
func (s *SessionState) AppendTurn(turn contractx.TurnRecord) {
	s.Turns = append(s.Turns, turn)
}

// SetProfile installs a new profile snapshot. A newer scrape supersedes the
// old snapshot entirely; artifacts derived from the superseded snapshot are
// dropped so every retained artifact references the current profile.
func (s *SessionState) SetProfile(p *contractx.Profile, now time.Time) {
	if p == nil {
		return
	}
	if s.Profile != nil && s.Profile.ID != p.ID {
		s.Analysis = nil
		s.JobFits = make(map[string]contractx.JobFitScore, 4)
		s.Rewrites = nil
	}
	s.Profile = p
	s.Touch(now)
}

// ApplyDelta merges one agent unit's output into the session. Merging is the
// orchestrator's job; agents themselves never mutate shared state.
func (s *SessionState) ApplyDelta(delta contractx.Delta, now time.Time) {
	if delta.Profile != nil {
		s.SetProfile(delta.Profile, now)
	}
	if delta.Analysis != nil {
		s.Analysis = delta.Analysis
	}
	if delta.JobFit != nil {
		s.EnsureJobFitsMap()
		s.JobFits[NormalizeRole(delta.JobFit.TargetRole)] = *delta.JobFit
	}
	if delta.Rewrite != nil {
		s.Rewrites = append(s.Rewrites, *delta.Rewrite)
	}
	s.Touch(now)
}

// Snapshot returns the read-only view handed to agent units.
func (s *SessionState) Snapshot(now time.Time) contractx.Snapshot {
	snap := contractx.Snapshot{
		SessionID: s.SessionID,
		UserID:    s.UserID,
		Profile:   s.Profile,
		Analysis:  s.Analysis,
		Rewrites:  s.Rewrites,
		Now:       now,
	}
	if len(s.JobFits) > 0 {
		snap.JobFits = make(map[string]contractx.JobFitScore, len(s.JobFits))
		for role, score := range s.JobFits {
			snap.JobFits[role] = score
		}
	}
	return snap
}

// Validate enforces the referential invariants between the profile snapshot
// and its derived artifacts.
func (s *SessionState) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if s.Analysis != nil {
		if s.Profile == nil {
			return fmt.Errorf("analysis %s retained without a profile", s.Analysis.ID)
		}
		if s.Analysis.ProfileID != s.Profile.ID {
			return fmt.Errorf("analysis %s references profile %s, session holds %s",
				s.Analysis.ID, s.Analysis.ProfileID, s.Profile.ID)
		}
	}
	for role, score := range s.JobFits {
		if s.Profile == nil || score.ProfileID != s.Profile.ID {
			return fmt.Errorf("job fit for role %q references a superseded profile", role)
		}
		if score.Score < 0 || score.Score > 100 {
			return fmt.Errorf("job fit for role %q has out-of-range score %d", role, score.Score)
		}
	}
	for _, rw := range s.Rewrites {
		if s.Profile == nil || rw.ProfileID != s.Profile.ID {
			return fmt.Errorf("rewrite %s references a superseded profile", rw.ID)
		}
	}
	for i := 1; i < len(s.Turns); i++ {
		if s.Turns[i].Timestamp.Before(s.Turns[i-1].Timestamp) {
			return fmt.Errorf("turn log out of order at index %d", i)
		}
	}
	return nil
}

// NormalizeRole canonicalizes a target-role string for use as a map key.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.Join(strings.Fields(role), " "))
}
