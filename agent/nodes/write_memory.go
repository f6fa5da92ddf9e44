package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
)

// WriteMemory runs the memory unit last so the durable facts reflect the
// merged state of the turn. On a failed turn the unit records the failure
// kind instead. A memory outage never fails the turn.
func WriteMemory(ctx context.Context, in *GraphState, registry contractx.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("graph session is nil")
	}

	input := in.Input
	input.FailureKind = in.FailureKind

	if _, err := registry.Memory().Run(ctx, in.snapshot(), input); err != nil {
		log.Warn().Err(err).Str("user_id", in.UserID).Msg("memory write failed, continuing")
		return in, nil
	}
	in.Trace = append(in.Trace, contractx.AgentMemory)
	return in, nil
}
