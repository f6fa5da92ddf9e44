package turnnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	contractx "github.com/careerninja/learntube/agent/contract"
	statex "github.com/careerninja/learntube/agent/state"
)

// LoadSession fetches the session, creating a fresh one when none is stored.
// Storage outages are retried a bounded number of times before the turn fails.
func LoadSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("graph state is nil")
	}

	var st *statex.SessionState
	operation := func() error {
		loaded, err := store.Load(ctx, in.SessionID)
		switch {
		case err == nil:
			st = loaded
			return nil
		case errors.Is(err, statex.ErrStateNotFound):
			st = statex.NewSessionState(in.SessionID, in.UserID, in.Now)
			return nil
		case contractx.Retryable(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	if err := retryStorage(ctx, operation); err != nil {
		return nil, err
	}
	in.Session = st
	return in, nil
}
