package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/careerninja/learntube/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("graph state is nil")
	}

	reply := strings.TrimSpace(in.Response)
	if reply == "" {
		return GraphOutput{}, ErrEmptyReply
	}

	return GraphOutput{Result: contractx.TurnResult{
		ResponseText: reply,
		Payload:      in.Payload,
		AgentTrace:   in.Trace,
		ErrorCode:    in.FailureKind,
	}}, nil
}
