package member

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

func compileRouterGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, routerLLMOutput], error) {
	runner, err := compileStructuredLLMGraph[routerLLMOutput](ctx, chatModel, systemPrompt, "router.model_graph")
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}

func compileStructuredLLMGraph[T any](
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, T], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[T](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, T]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add structured prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add structured model node: %w", err)
	}
	if err := graph.AddLambdaNode("strip_fences", compose.InvokableLambda(stripCodeFences)); err != nil {
		return nil, fmt.Errorf("add structured fence node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add structured parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add structured edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add structured edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "strip_fences"); err != nil {
		return nil, fmt.Errorf("add structured edge model->strip: %w", err)
	}
	if err := graph.AddEdge("strip_fences", "parse_json"); err != nil {
		return nil, fmt.Errorf("add structured edge strip->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add structured edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile structured graph: %w", err)
	}
	return runner, nil
}

// stripCodeFences unwraps ```json blocks some models put around JSON replies.
func stripCodeFences(_ context.Context, msg *schema.Message) (*schema.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	content := strings.TrimSpace(msg.Content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if nl := strings.IndexByte(content, '\n'); nl >= 0 {
			content = content[nl+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	out := *msg
	out.Content = strings.TrimSpace(content)
	return &out, nil
}

type memberGraphState struct {
	Req      contractx.MemberRequest
	Messages []*schema.Message
}

func compileMemberRuntimeGraph(
	ctx context.Context,
	agentType contractx.AgentType,
	prepare func(context.Context, contractx.MemberRequest) (*memberGraphState, error),
	toolLoop func(context.Context, *memberGraphState) (contractx.MemberResponse, error),
	directReply func(context.Context, *memberGraphState) (contractx.MemberResponse, error),
	hasTools bool,
) (compose.Runnable[contractx.MemberRequest, contractx.MemberResponse], error) {
	graph := compose.NewGraph[contractx.MemberRequest, contractx.MemberResponse]()

	if err := graph.AddLambdaNode("prepare", compose.InvokableLambda(prepare)); err != nil {
		return nil, fmt.Errorf("add member prepare node: %w", err)
	}
	if err := graph.AddLambdaNode("tool_loop", compose.InvokableLambda(toolLoop)); err != nil {
		return nil, fmt.Errorf("add member tool loop node: %w", err)
	}
	if err := graph.AddLambdaNode("direct_reply", compose.InvokableLambda(directReply)); err != nil {
		return nil, fmt.Errorf("add member direct reply node: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *memberGraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: member graph state is nil", contractx.ErrValidation)
			}
			if hasTools {
				return "tool_loop", nil
			}
			return "direct_reply", nil
		},
		map[string]bool{
			"tool_loop":    true,
			"direct_reply": true,
		},
	)

	if err := graph.AddBranch("prepare", branch); err != nil {
		return nil, fmt.Errorf("add member branch: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prepare"); err != nil {
		return nil, fmt.Errorf("add member edge start->prepare: %w", err)
	}
	if err := graph.AddEdge("tool_loop", compose.END); err != nil {
		return nil, fmt.Errorf("add member edge tool_loop->end: %w", err)
	}
	if err := graph.AddEdge("direct_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add member edge direct_reply->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("member."+string(agentType)+".runtime_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile member runtime graph: %w", err)
	}
	return runner, nil
}
