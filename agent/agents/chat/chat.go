// Package chat implements the fallback conversational agent. It answers
// free-form career questions grounded on the user's long-term facts and the
// current session artifacts, and never mutates session state.
package chat

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/careerninja/learntube/agent/contract"
	promptx "github.com/careerninja/learntube/agent/prompt"
)

type Config struct {
	MaxAttempts int     `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"2"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"700"`
	Temperature float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
}

type Agent struct {
	generator contractx.Generator
	template  string
	cfg       Config
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(generator contractx.Generator, template string, cfg Config) *Agent {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Agent{generator: generator, template: template, cfg: cfg}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentChat
}

func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, input contractx.TurnInput) (contractx.Delta, error) {
	prompt := promptx.Fill(a.template, map[string]string{
		"MEMORY_CONTEXT": memoryContext(snap),
		"USER_MESSAGE":   input.Message,
	})

	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		text, err := a.generator.Generate(ctx, prompt, contractx.GenerateOptions{
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		})
		if err != nil {
			lastErr = err
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			lastErr = fmt.Errorf("empty reply")
			continue
		}
		return contractx.Delta{Response: text}, nil
	}
	return contractx.Delta{}, fmt.Errorf("%w: %v", contractx.ErrGenerationFailed, lastErr)
}

// memoryContext renders session artifacts and long-term facts into the
// grounding block of the chat prompt.
func memoryContext(snap contractx.Snapshot) string {
	var b strings.Builder
	if snap.Profile != nil {
		fmt.Fprintf(&b, "Profile: %s (%s)\n", snap.Profile.Name, snap.Profile.Headline)
	}
	if snap.Analysis != nil {
		fmt.Fprintf(&b, "Last analysis: %s\n", snap.Analysis.Summary)
		if len(snap.Analysis.Gaps) > 0 {
			fmt.Fprintf(&b, "Known gaps: %s\n", strings.Join(snap.Analysis.Gaps, "; "))
		}
	}
	for role, fit := range snap.JobFits {
		fmt.Fprintf(&b, "Fit for %s: %d/100\n", role, fit.Score)
	}
	for _, fact := range snap.Facts {
		fmt.Fprintf(&b, "%s: %s\n", fact.Key, fact.Value)
	}
	if b.Len() == 0 {
		return "No profile on record yet."
	}
	return b.String()
}
