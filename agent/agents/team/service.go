// Package team answers one user message with the best suited member of the team.
package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/spark/agent/contract"
	teamnode "github.com/tanpawarit/spark/agent/nodes/team"
	statex "github.com/tanpawarit/spark/agent/state"
)

var (
	ErrInvalidMessage = teamnode.ErrInvalidMessage
	ErrInvalidUser    = teamnode.ErrInvalidUser
)

type Config struct {
	ChannelType string
	HistorySize int
}

type Response struct {
	Content string
	Member  contractx.AgentType
}

type Team struct {
	store      statex.Store
	models     contractx.Registry
	summarizer contractx.Summarizer

	graphRunner compose.Runnable[teamnode.GraphInput, teamnode.GraphOutput]

	channelType string
	historySize int

	now func() time.Time
}

// New builds the team. summarizer may be nil when session summaries are disabled.
func New(
	store statex.Store,
	models contractx.Registry,
	summarizer contractx.Summarizer,
	cfg Config,
) (*Team, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if models.Router() == nil {
		return nil, errors.New("router is required")
	}

	channelType := strings.TrimSpace(cfg.ChannelType)
	if channelType == "" {
		channelType = "chat"
	}
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = statex.DefaultHistorySize
	}

	t := &Team{
		store:       store,
		models:      models,
		summarizer:  summarizer,
		channelType: channelType,
		historySize: historySize,
		now:         time.Now,
	}

	graphRunner, err := t.compileRunGraph(context.Background())
	if err != nil {
		return nil, err
	}
	t.graphRunner = graphRunner

	return t, nil
}

func (t *Team) Run(ctx context.Context, message string, userID string) (Response, error) {
	out, err := t.graphRunner.Invoke(ctx, teamnode.GraphInput{
		UserID:      userID,
		ChannelType: t.channelType,
		Text:        message,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Content: out.Reply, Member: out.Member}, nil
}
