package teamnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/spark/agent/contract"
	statex "github.com/tanpawarit/spark/agent/state"
)

func LoadOrCreateSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
	case errors.Is(err, statex.ErrStateNotFound):
		st = statex.NewSessionState(in.SessionID, in.UserID, in.ChannelType, in.Now)
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}

	in.Session = st
	return in, nil
}
