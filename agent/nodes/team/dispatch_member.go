package teamnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

func DispatchMember(ctx context.Context, in *GraphState, models contractx.Registry, historySize int) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Route.Member == "" {
		return nil, ErrNoMember
	}

	member, ok := models.Member(in.Route.Member)
	if !ok || member == nil {
		return nil, fmt.Errorf("%w: unknown member=%q", contractx.ErrValidation, in.Route.Member)
	}

	resp, err := member.Run(ctx, contractx.MemberRequest{
		UserID:         in.UserID,
		UserMessage:    in.Text,
		SessionSummary: in.Session.Summary,
		History:        in.Session.Recent(historySize),
		Now:            in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Message = strings.TrimSpace(resp.Message)
	in.ToolResults = resp.ToolResults
	return in, nil
}
