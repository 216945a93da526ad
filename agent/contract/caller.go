package contract

import "context"

// Caller identifies on whose behalf a tool runs.
type Caller struct {
	UserID string
	Agent  AgentType
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || c.UserID == "" || c.Agent == "" {
		return Caller{}, false
	}
	return c, true
}
