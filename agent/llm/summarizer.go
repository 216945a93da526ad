package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/spark/agent/contract"
	statex "github.com/tanpawarit/spark/agent/state"
)

const (
	summaryMaxTokens = 300
	summarySystem    = `You maintain a short running summary of a conversation between a user and a personal assistant team (recipes, movies, celebrations).
Fold the new exchange into the previous summary. Keep facts the user stated, open requests and decisions.
Write at most 6 short sentences in the user's language. Reply with the summary only.`
)

var _ contractx.Summarizer = (*SessionSummarizer)(nil)

// SessionSummarizer keeps a rolling session summary with a plain chat completion call.
type SessionSummarizer struct {
	client *openaisdk.Client
	model  string
}

func NewSessionSummarizer(client *openaisdk.Client, model string) *SessionSummarizer {
	return &SessionSummarizer{client: client, model: strings.TrimSpace(model)}
}

func (s *SessionSummarizer) Summarize(ctx context.Context, previous string, turn statex.Interaction) (string, error) {
	if s == nil || s.client == nil {
		return previous, nil
	}

	var b strings.Builder
	b.WriteString("Previous summary:\n")
	if strings.TrimSpace(previous) == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(strings.TrimSpace(previous))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nNew exchange (handled by %s):\nUser: %s\nAssistant: %s\n", turn.Member, turn.UserMessage, turn.Reply)

	resp, err := s.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(summarySystem),
			openaisdk.UserMessage(b.String()),
		},
		MaxCompletionTokens: openaisdk.Int(summaryMaxTokens),
		Temperature:         openaisdk.Float(0),
	})
	if err != nil {
		return previous, fmt.Errorf("%w: summarize session: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return previous, fmt.Errorf("%w: summary response has no choices", contractx.ErrSchemaViolation)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return previous, nil
	}
	return summary, nil
}
