package contract

import (
	"time"

	statex "github.com/tanpawarit/spark/agent/state"
)

type AgentType string

const (
	AgentTypeTeam         AgentType = "team"
	AgentTypeRouter       AgentType = "router"
	AgentTypeRecipes      AgentType = "recipes"
	AgentTypeMovies       AgentType = "movies"
	AgentTypeCelebrations AgentType = "celebrations"
)

// Members lists the agents a message can be routed to.
var Members = []AgentType{AgentTypeRecipes, AgentTypeMovies, AgentTypeCelebrations}

func ParseMember(s string) (AgentType, bool) {
	for _, m := range Members {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

type RouterRequest struct {
	UserMessage    string               `json:"user_message"`
	SessionSummary string               `json:"session_summary,omitempty"`
	ActiveMember   string               `json:"active_member,omitempty"`
	History        []statex.Interaction `json:"history,omitempty"`
	Now            time.Time            `json:"now"`
}

type RouterResponse struct {
	Member AgentType `json:"member"`
	Reason string    `json:"reason,omitempty"`
}

type MemberRequest struct {
	UserID         string               `json:"user_id"`
	UserMessage    string               `json:"user_message"`
	SessionSummary string               `json:"session_summary,omitempty"`
	History        []statex.Interaction `json:"history,omitempty"`
	Now            time.Time            `json:"now"`
}

type MemberResponse struct {
	Message     string       `json:"message"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries either Result or Error. Tool failures are reported here, not as Go errors.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
