package teamnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/spark/agent/contract"
	statex "github.com/tanpawarit/spark/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidUser    = errors.New("user id is empty")
	ErrNoMember       = errors.New("no member selected")
)

type GraphInput struct {
	UserID      string
	ChannelType string
	Text        string
}

type GraphOutput struct {
	Reply  string
	Member contractx.AgentType
}

type GraphState struct {
	UserID      string
	ChannelType string
	SessionID   string
	Text        string
	Now         time.Time

	Session *statex.SessionState
	Route   contractx.RouterResponse

	Message     string
	ToolResults []contractx.ToolResult
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	channel := strings.TrimSpace(in.ChannelType)
	if channel == "" {
		channel = "chat"
	}

	return &GraphState{
		UserID:      userID,
		ChannelType: channel,
		SessionID:   statex.SessionIDFor(channel, userID),
		Text:        text,
		Now:         nowFn().UTC(),
	}, nil
}
