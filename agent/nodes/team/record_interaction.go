package teamnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/spark/agent/contract"
	statex "github.com/tanpawarit/spark/agent/state"
)

// RecordInteraction appends the finished turn to the session and refreshes the summary.
// A nil summarizer leaves the summary untouched. Summary failures are logged, not returned.
func RecordInteraction(
	ctx context.Context,
	in *GraphState,
	summarizer contractx.Summarizer,
	historySize int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	turn := statex.Interaction{
		Member:      string(in.Route.Member),
		UserMessage: in.Text,
		Reply:       in.Message,
		At:          in.Now,
	}
	if err := in.Session.Record(turn, historySize); err != nil {
		return nil, fmt.Errorf("record interaction: %w", err)
	}

	if summarizer == nil {
		return in, nil
	}
	summary, err := summarizer.Summarize(ctx, in.Session.Summary, turn)
	if err != nil {
		log.Warn().Err(err).Str("user_id", in.UserID).Msg("session summary not updated")
		return in, nil
	}
	in.Session.Summary = summary
	return in, nil
}
