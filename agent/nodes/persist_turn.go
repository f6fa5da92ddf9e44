package turnnode

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	contractx "github.com/careerninja/learntube/agent/contract"
	statex "github.com/careerninja/learntube/agent/state"
)

// PersistTurn appends the turn record and saves the whole session with a
// single write, so a save failure leaves the stored session exactly as it
// was before the turn. Only storage outages are retried.
func PersistTurn(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("graph session is nil")
	}

	in.Session.AppendTurn(contractx.TurnRecord{
		Timestamp:   in.Now,
		UserMessage: in.Message,
		AgentTrace:  in.Trace,
		Response:    in.Response,
		FailureKind: in.FailureKind,
	})
	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}

	operation := func() error {
		err := store.Save(ctx, in.Session)
		if err == nil {
			return nil
		}
		if !contractx.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := retryStorage(ctx, operation); err != nil {
		return nil, err
	}
	return in, nil
}
