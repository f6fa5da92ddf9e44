package turnnode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
)

// RunAgents executes the routed plan sequentially. Each agent sees a fresh
// snapshot that includes the deltas merged so far, so a scrape in the same
// turn is visible to the analysis that follows it. The first agent failure
// stops the plan; the turn then carries a failure kind instead of an error,
// because a failed turn is still a turn that must be recorded and answered.
// The trace lists every agent invoked, failed ones included.
func RunAgents(ctx context.Context, in *GraphState, registry contractx.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("graph session is nil")
	}

	var responses []string
	for _, name := range in.Plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit, err := lookupAgent(registry, name)
		if err != nil {
			return nil, err
		}

		delta, err := unit.Run(ctx, in.snapshot(), in.Input)
		in.Trace = append(in.Trace, name)
		if err != nil {
			kind := contractx.FailureKind(err)
			log.Warn().Err(err).Str("agent", string(name)).Str("kind", kind).Msg("agent failed, stopping plan")
			in.FailureKind = kind
			in.Response = failureMessage(err)
			return in, nil
		}

		in.Session.ApplyDelta(delta, in.Now)
		if delta.Response != "" {
			responses = append(responses, delta.Response)
		}
		if delta.Payload != nil {
			in.Payload = delta.Payload
		}
	}

	in.Response = strings.Join(responses, "\n\n")
	return in, nil
}

func lookupAgent(registry contractx.Registry, name contractx.AgentName) (contractx.AgentUnit, error) {
	switch name {
	case contractx.AgentScraper:
		return registry.Scraper(), nil
	case contractx.AgentAnalysis:
		return registry.Analysis(), nil
	case contractx.AgentJobFit:
		return registry.JobFit(), nil
	case contractx.AgentRewrite:
		return registry.Rewrite(), nil
	case contractx.AgentMemory:
		return registry.Memory(), nil
	case contractx.AgentChat:
		return registry.Chat(), nil
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}

// failureMessage is the user-facing rendering of an agent failure. It names
// what went wrong without leaking internals.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrInvalidProfileURL):
		return "That does not look like a profile URL I can fetch. Please share the full public profile link."
	case errors.Is(err, contractx.ErrProfileNotFound):
		return "I could not find a profile at that URL. Please check the link and try again."
	case errors.Is(err, contractx.ErrPrerequisiteMissing):
		return "I need a scraped and analyzed profile before I can do that. Share your profile URL and ask me to analyze it first."
	case errors.Is(err, contractx.ErrRewriteInconsistent):
		return "I could not produce a rewrite that stays true to your profile. Please try again or pick another section."
	case errors.Is(err, contractx.ErrStorageUnavailable):
		return "I am having trouble reaching storage right now. Please try again in a moment."
	case errors.Is(err, contractx.ErrTransientIO):
		return "The profile source is not responding right now. Please try again in a moment."
	default:
		return "Something went wrong while working on that. Please try again."
	}
}
