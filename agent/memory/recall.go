package memory

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

// Recaller renders an agent's memories of a user as a prompt section.
type Recaller struct {
	store Store
	limit int
}

func NewRecaller(store Store, limit int) *Recaller {
	if limit <= 0 {
		limit = 10
	}
	return &Recaller{store: store, limit: limit}
}

func (r *Recaller) ReadSummary(ctx context.Context, agentType contractx.AgentType, userID string) (string, error) {
	if r == nil || r.store == nil || strings.TrimSpace(userID) == "" {
		return "", nil
	}
	items, err := r.store.List(ctx, string(agentType), userID, r.limit)
	if err != nil {
		return "", err
	}
	return Format(items), nil
}

// Format lists memories one per line with their ids so a model can update them.
func Format(items []Memory) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range items {
		fmt.Fprintf(&b, "- [%s] %s", m.ID, m.Content)
		if len(m.Topics) > 0 {
			fmt.Fprintf(&b, " (topics: %s)", strings.Join(m.Topics, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
