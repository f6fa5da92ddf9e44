// Package memoryagent persists the durable facts of a turn. It runs last,
// after the other agents' deltas are merged, and writes through the
// long-term store so a later session can recall prior work.
package memoryagent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
)

const (
	KeyProfileRef   = "profile_ref"
	KeyLastAnalysis = "last_analysis"
	KeyLastFailure  = "last_failure"
	KeyJobFitPrefix = "job_fit:"
	KeyRewritePref  = "rewrite:"
)

type Agent struct {
	store contractx.MemoryStore
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(store contractx.MemoryStore) *Agent {
	return &Agent{store: store}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentMemory
}

// Run writes one fact per artifact present in the snapshot. Puts overwrite
// by key, so replaying a turn leaves the store unchanged.
func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, input contractx.TurnInput) (contractx.Delta, error) {
	if input.FailureKind != "" {
		if err := a.store.Put(ctx, snap.UserID, KeyLastFailure, input.FailureKind); err != nil {
			return contractx.Delta{}, fmt.Errorf("record failure: %w", err)
		}
		return contractx.Delta{}, nil
	}

	if snap.Profile != nil {
		ref := map[string]string{"id": snap.Profile.ID, "url": snap.Profile.URL, "name": snap.Profile.Name}
		if err := a.put(ctx, snap.UserID, KeyProfileRef, ref); err != nil {
			return contractx.Delta{}, err
		}
	}
	if snap.Analysis != nil {
		digest := map[string]any{
			"id":         snap.Analysis.ID,
			"profile_id": snap.Analysis.ProfileID,
			"summary":    snap.Analysis.Summary,
			"gaps":       snap.Analysis.Gaps,
		}
		if err := a.put(ctx, snap.UserID, KeyLastAnalysis, digest); err != nil {
			return contractx.Delta{}, err
		}
	}
	for role, fit := range snap.JobFits {
		digest := map[string]any{"score": fit.Score, "rationale": fit.Rationale}
		if err := a.put(ctx, snap.UserID, KeyJobFitPrefix+role, digest); err != nil {
			return contractx.Delta{}, err
		}
	}
	// Only the newest rewrite per section is worth remembering.
	latest := map[string]contractx.RewriteResult{}
	for _, rw := range snap.Rewrites {
		if prev, ok := latest[rw.Section]; !ok || rw.CreatedAt.After(prev.CreatedAt) {
			latest[rw.Section] = rw
		}
	}
	for section, rw := range latest {
		if err := a.put(ctx, snap.UserID, KeyRewritePref+section, rw.RewrittenText); err != nil {
			return contractx.Delta{}, err
		}
	}

	log.Debug().Str("user_id", snap.UserID).Msg("durable facts written")
	return contractx.Delta{}, nil
}

func (a *Agent) put(ctx context.Context, userID, key string, value any) error {
	s, ok := value.(string)
	if !ok {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode fact %s: %w", key, err)
		}
		s = string(raw)
	}
	if err := a.store.Put(ctx, userID, key, s); err != nil {
		return fmt.Errorf("persist fact %s: %w", key, err)
	}
	return nil
}
