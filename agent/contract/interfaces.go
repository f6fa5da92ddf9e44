package contract

import (
	"context"
	"time"
)

// Generator is the externally supplied text-generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ScrapeClient is the externally supplied scrape capability.
type ScrapeClient interface {
	Scrape(ctx context.Context, url string) (RawProfile, error)
}

// MemoryStore is the durable long-term fact store, keyed by (user, fact key).
// Put overwrites by key and is idempotent.
type MemoryStore interface {
	Get(ctx context.Context, userID, key string) (Fact, bool, error)
	Put(ctx context.Context, userID, key, value string) error
	List(ctx context.Context, userID string) ([]Fact, error)
}

// Snapshot is the read-only slice of session state an agent unit receives.
// Agents return deltas; only the orchestrator merges them back.
type Snapshot struct {
	SessionID string
	UserID    string
	Profile   *Profile
	Analysis  *AnalysisResult
	JobFits   map[string]JobFitScore
	Rewrites  []RewriteResult
	Facts     []Fact
	Now       time.Time
}

// Delta is the session mutation an agent unit proposes for the current turn.
type Delta struct {
	Profile  *Profile
	Analysis *AnalysisResult
	JobFit   *JobFitScore
	Rewrite  *RewriteResult
	Response string
	Payload  any
}

// AgentUnit transforms validated input into a validated delta.
type AgentUnit interface {
	Name() AgentName
	Run(ctx context.Context, snap Snapshot, input TurnInput) (Delta, error)
}

// TurnInput carries the routed slice of the user's message to an agent.
// FailureKind is set only when an earlier agent in the turn failed, so the
// memory unit can record the failure instead of fresh artifacts.
type TurnInput struct {
	Message     string
	ProfileURL  string
	TargetRole  string
	Section     string
	FailureKind string
}

// Registry exposes the closed set of agent unit variants.
type Registry interface {
	Scraper() AgentUnit
	Analysis() AgentUnit
	JobFit() AgentUnit
	Rewrite() AgentUnit
	Memory() AgentUnit
	Chat() AgentUnit
}
