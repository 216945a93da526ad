package team

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	teamnode "github.com/tanpawarit/spark/agent/nodes/team"
)

func (t *Team) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[teamnode.GraphInput, teamnode.GraphOutput], error) {
	graph := compose.NewGraph[teamnode.GraphInput, teamnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in teamnode.GraphInput) (*teamnode.GraphState, error) {
			return teamnode.ValidateRequest(in, t.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (*teamnode.GraphState, error) {
			return teamnode.LoadOrCreateSession(ctx, in, t.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("route_message",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (*teamnode.GraphState, error) {
			return teamnode.RouteMessage(ctx, in, t.models.Router(), t.historySize)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_message: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_member",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (*teamnode.GraphState, error) {
			return teamnode.DispatchMember(ctx, in, t.models, t.historySize)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_member: %w", err)
	}

	if err := graph.AddLambdaNode("record_interaction",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (*teamnode.GraphState, error) {
			return teamnode.RecordInteraction(ctx, in, t.summarizer, t.historySize)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_interaction: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (*teamnode.GraphState, error) {
			return teamnode.SaveSession(ctx, in, t.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *teamnode.GraphState) (teamnode.GraphOutput, error) {
			return teamnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_session"},
		{"load_or_create_session", "route_message"},
		{"route_message", "dispatch_member"},
		{"dispatch_member", "record_interaction"},
		{"record_interaction", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("team.run"))
	if err != nil {
		return nil, fmt.Errorf("compile team graph: %w", err)
	}
	return runner, nil
}
