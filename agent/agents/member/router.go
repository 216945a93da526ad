package member

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/spark/agent/contract"
	statex "github.com/tanpawarit/spark/agent/state"
)

type routerImpl struct {
	runner compose.Runnable[map[string]any, routerLLMOutput]
}

type routerLLMOutput struct {
	Member string `json:"member"`
	Reason string `json:"reason,omitempty"`
}

func newRouter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*routerImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: router prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileRouterGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile router graph: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{runner: runner}, nil
}

func (r *routerImpl) Route(ctx context.Context, req contractx.RouterRequest) (contractx.RouterResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.RouterResponse{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message":    req.UserMessage,
		"active_member":   req.ActiveMember,
		"session_summary": req.SessionSummary,
		"history":         summarizeHistory(req.History),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.RouterResponse{}, fmt.Errorf("%w: marshal router payload: %v", contractx.ErrValidation, err)
	}

	out, err := r.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.RouterResponse{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrModelInvoke, err)
	}

	member, ok := contractx.ParseMember(strings.ToLower(strings.TrimSpace(out.Member)))
	if !ok {
		return contractx.RouterResponse{}, fmt.Errorf("%w: unsupported member=%q", contractx.ErrSchemaViolation, out.Member)
	}

	return contractx.RouterResponse{
		Member: member,
		Reason: strings.TrimSpace(out.Reason),
	}, nil
}

func summarizeHistory(history []statex.Interaction) []map[string]any {
	out := make([]map[string]any, 0, len(history))
	for _, turn := range history {
		out = append(out, map[string]any{
			"member":       turn.Member,
			"user_message": turn.UserMessage,
			"reply":        turn.Reply,
		})
	}
	return out
}
