package teamnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

// RouteMessage asks the router for a member. When routing fails the active member keeps the conversation.
func RouteMessage(ctx context.Context, in *GraphState, router contractx.Router, historySize int) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	resp, err := router.Route(ctx, contractx.RouterRequest{
		UserMessage:    in.Text,
		SessionSummary: in.Session.Summary,
		ActiveMember:   in.Session.ActiveMember,
		History:        in.Session.Recent(historySize),
		Now:            in.Now,
	})
	if err != nil {
		active, ok := contractx.ParseMember(in.Session.ActiveMember)
		if !ok {
			return nil, err
		}
		log.Warn().Err(err).Str("user_id", in.UserID).Str("member", string(active)).Msg("routing failed, staying with active member")
		resp = contractx.RouterResponse{Member: active, Reason: "routing failed"}
	}

	log.Debug().Str("user_id", in.UserID).Str("member", string(resp.Member)).Str("reason", resp.Reason).Msg("message routed")
	in.Route = resp
	return in, nil
}
