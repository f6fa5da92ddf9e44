// Package turnnode holds the orchestration steps of the turn graph, one
// step per file. Each step takes the shared GraphState, does one thing, and
// hands the state forward.
package turnnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
	statex "github.com/careerninja/learntube/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidUser    = errors.New("user id is empty")
	ErrEmptyReply     = errors.New("turn produced no reply")
)

type GraphInput struct {
	SessionID string
	UserID    string
	Message   string
}

type GraphOutput struct {
	Result contractx.TurnResult
}

type GraphState struct {
	SessionID string
	UserID    string
	Message   string
	Now       time.Time

	Session *statex.SessionState
	Facts   []contractx.Fact

	Input contractx.TurnInput
	Plan  []contractx.AgentName

	Trace       []contractx.AgentName
	Response    string
	Payload     any
	FailureKind string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		UserID:    userID,
		Message:   message,
		Now:       nowFn().UTC(),
	}, nil
}

// snapshot builds the read-only view the agents receive, folding in the
// long-term facts loaded earlier in the turn.
func (g *GraphState) snapshot() contractx.Snapshot {
	snap := g.Session.Snapshot(g.Now)
	snap.Facts = g.Facts
	return snap
}
