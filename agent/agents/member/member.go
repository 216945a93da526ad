package member

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/pkg/datefacts"
)

const DefaultMaxToolSteps = 6

type memberImpl struct {
	agentType    contractx.AgentType
	systemPrompt string
	chatModel    einomodel.BaseChatModel
	tools        contractx.ToolGateway
	memories     contractx.MemoryReader
	maxToolSteps int
	runner       compose.Runnable[contractx.MemberRequest, contractx.MemberResponse]
}

func newMember(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	toolInfos []*schema.ToolInfo,
	tools contractx.ToolGateway,
	memories contractx.MemoryReader,
	maxToolSteps int,
) (*memberImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: member=%s", contractx.ErrPromptMissing, agentType)
	}
	if maxToolSteps <= 0 {
		maxToolSteps = DefaultMaxToolSteps
	}

	m := &memberImpl{
		agentType:    agentType,
		systemPrompt: systemPrompt,
		chatModel:    chatModel,
		tools:        tools,
		memories:     memories,
		maxToolSteps: maxToolSteps,
	}

	hasTools := len(toolInfos) > 0 && tools != nil
	if hasTools {
		toolModel, err := chatModel.WithTools(toolInfos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for member=%s: %v", contractx.ErrModelInvoke, agentType, err)
		}
		m.chatModel = toolModel
	}

	runner, err := compileMemberRuntimeGraph(ctx, agentType, m.prepare, m.runToolLoop, m.runDirect, hasTools)
	if err != nil {
		return nil, fmt.Errorf("%w: compile member graph: %v", contractx.ErrModelInvoke, err)
	}
	m.runner = runner
	return m, nil
}

func (m *memberImpl) Run(ctx context.Context, req contractx.MemberRequest) (contractx.MemberResponse, error) {
	ctx = contractx.WithCaller(ctx, contractx.Caller{UserID: req.UserID, Agent: m.agentType})
	return m.runner.Invoke(ctx, req)
}

func (m *memberImpl) prepare(ctx context.Context, req contractx.MemberRequest) (*memberGraphState, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	var remembered string
	if m.memories != nil {
		summary, err := m.memories.ReadSummary(ctx, m.agentType, req.UserID)
		if err != nil {
			// a broken memory store should not silence the agent
			log.Warn().Err(err).Str("member", string(m.agentType)).Str("user_id", req.UserID).Msg("read memories failed")
		}
		remembered = summary
	}

	messages := []*schema.Message{schema.SystemMessage(m.systemContext(req, remembered))}
	for _, turn := range req.History {
		if strings.TrimSpace(turn.UserMessage) == "" {
			continue
		}
		messages = append(messages, schema.UserMessage(turn.UserMessage))
		if reply := strings.TrimSpace(turn.Reply); reply != "" {
			messages = append(messages, schema.AssistantMessage(reply, nil))
		}
	}
	messages = append(messages, schema.UserMessage(req.UserMessage))

	return &memberGraphState{Req: req, Messages: messages}, nil
}

func (m *memberImpl) systemContext(req contractx.MemberRequest, remembered string) string {
	var b strings.Builder
	b.WriteString(m.systemPrompt)

	if !req.Now.IsZero() {
		now := datefacts.CurrentDateTime(req.Now)
		fmt.Fprintf(&b, "\n\nCurrent date: %s (%s), time %s.", now.Date, now.DayOfWeek, now.Time)
	}
	if s := strings.TrimSpace(req.SessionSummary); s != "" {
		b.WriteString("\n\nConversation summary so far:\n")
		b.WriteString(s)
	}
	if s := strings.TrimSpace(remembered); s != "" {
		b.WriteString("\n\nWhat you remember about this user:\n")
		b.WriteString(s)
	}
	return b.String()
}

func (m *memberImpl) runDirect(ctx context.Context, in *memberGraphState) (contractx.MemberResponse, error) {
	msg, err := m.chatModel.Generate(ctx, in.Messages)
	if err != nil {
		return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s generate: %v", contractx.ErrModelInvoke, m.agentType, err)
	}
	content := ""
	if msg != nil {
		content = strings.TrimSpace(msg.Content)
	}
	if content == "" {
		return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s returned an empty reply", contractx.ErrSchemaViolation, m.agentType)
	}
	return contractx.MemberResponse{Message: content}, nil
}

// runToolLoop alternates model turns and tool executions until the model answers in plain text.
func (m *memberImpl) runToolLoop(ctx context.Context, in *memberGraphState) (contractx.MemberResponse, error) {
	messages := in.Messages
	var results []contractx.ToolResult

	for step := 0; step < m.maxToolSteps; step++ {
		msg, err := m.chatModel.Generate(ctx, messages)
		if err != nil {
			return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s generate: %v", contractx.ErrModelInvoke, m.agentType, err)
		}
		if msg == nil {
			return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s returned no message", contractx.ErrSchemaViolation, m.agentType)
		}

		if len(msg.ToolCalls) == 0 {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s returned an empty reply", contractx.ErrSchemaViolation, m.agentType)
			}
			return contractx.MemberResponse{Message: content, ToolResults: results}, nil
		}

		calls := make([]schema.ToolCall, len(msg.ToolCalls))
		copy(calls, msg.ToolCalls)
		for i := range calls {
			if strings.TrimSpace(calls[i].ID) == "" {
				calls[i].ID = "call_" + uuid.NewString()
			}
		}
		messages = append(messages, schema.AssistantMessage(msg.Content, calls))

		for _, call := range calls {
			res, err := m.execute(ctx, step, call)
			if err != nil {
				return contractx.MemberResponse{}, err
			}
			results = append(results, res)
			messages = append(messages, schema.ToolMessage(encodeToolResult(res), call.ID))
		}
	}

	return contractx.MemberResponse{}, fmt.Errorf("%w: member=%s after %d steps", contractx.ErrToolLoop, m.agentType, m.maxToolSteps)
}

func (m *memberImpl) execute(ctx context.Context, step int, call schema.ToolCall) (contractx.ToolResult, error) {
	req, err := toToolRequest(call)
	if err != nil {
		return contractx.ToolResult{Tool: call.Function.Name, Error: err.Error()}, nil
	}

	log.Debug().Str("member", string(m.agentType)).Str("tool", req.Tool).Int("step", step).Msg("tool call")
	out, err := m.tools.Execute(ctx, m.agentType, []contractx.ToolRequest{req})
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("member=%s tool=%s: %w", m.agentType, req.Tool, err)
	}
	if len(out) == 0 {
		return contractx.ToolResult{Tool: req.Tool, Error: "tool returned no result"}, nil
	}
	return out[0], nil
}

func toToolRequest(call schema.ToolCall) (contractx.ToolRequest, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return contractx.ToolRequest{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return contractx.ToolRequest{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
		}
	}
	return contractx.ToolRequest{Tool: tool, Args: args}, nil
}

func encodeToolResult(res contractx.ToolResult) string {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"result could not be encoded"}`, res.Tool)
	}
	return string(raw)
}
