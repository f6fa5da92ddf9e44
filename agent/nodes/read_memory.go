package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
)

// ReadMemory loads the user's durable facts for prompt grounding. Long-term
// memory is advisory; an outage degrades the turn instead of failing it.
func ReadMemory(ctx context.Context, in *GraphState, memory contractx.MemoryStore) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("graph session is nil")
	}

	facts, err := memory.List(ctx, in.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", in.UserID).Msg("long-term memory unavailable, continuing without facts")
		return in, nil
	}
	in.Facts = facts
	return in, nil
}
