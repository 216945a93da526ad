package contract

import (
	"context"

	statex "github.com/tanpawarit/spark/agent/state"
)

type Router interface {
	Route(ctx context.Context, req RouterRequest) (RouterResponse, error)
}

type Member interface {
	Run(ctx context.Context, req MemberRequest) (MemberResponse, error)
}

type Registry interface {
	Router() Router
	Member(agentType AgentType) (Member, bool)
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, reqs []ToolRequest) ([]ToolResult, error)
}

// MemoryReader renders what an agent remembers about a user.
type MemoryReader interface {
	ReadSummary(ctx context.Context, agentType AgentType, userID string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, previous string, turn statex.Interaction) (string, error)
}
