package tool

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/agent/memory"
)

const (
	ToolMemoryAdd    = "memory_add"
	ToolMemoryList   = "memory_list"
	ToolMemoryUpdate = "memory_update"
	ToolMemoryDelete = "memory_delete"
)

var errNoCaller = errors.New("no user context for memory tool")

type MemoryDeleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// MemoryTools manage the calling agent's memories about the calling user.
func MemoryTools(store memory.Store, agents ...contractx.AgentType) []Spec {
	topics := Param{Name: "topics", Type: schema.Array, Elem: schema.String, Desc: "Short topic tags, e.g. diet, watchlist, birthday"}
	return []Spec{
		{
			Name:        ToolMemoryAdd,
			Description: "Remember a fact about the user for future conversations (preferences, saved recipes, watchlist entries, birthdays).",
			Params: []Param{
				{Name: "content", Type: schema.String, Desc: "The fact to remember, written as a full sentence", Required: true},
				topics,
			},
			Agents:         agents,
			RequiresCaller: true,
			Call: func(ctx context.Context, args Args) (any, error) {
				caller, ok := contractx.CallerFrom(ctx)
				if !ok {
					return nil, errNoCaller
				}
				content, err := args.String("content")
				if err != nil {
					return nil, err
				}
				return store.Add(ctx, memory.Memory{
					Domain:  string(caller.Agent),
					UserID:  caller.UserID,
					Content: content,
					Topics:  args.Strings("topics"),
				})
			},
		},
		{
			Name:        ToolMemoryList,
			Description: "List what you remember about the user, newest first.",
			Params: []Param{
				{Name: "limit", Type: schema.Integer, Desc: "Maximum number of memories, default 20"},
			},
			Agents:         agents,
			RequiresCaller: true,
			Call: func(ctx context.Context, args Args) (any, error) {
				caller, ok := contractx.CallerFrom(ctx)
				if !ok {
					return nil, errNoCaller
				}
				limit, err := args.Int("limit", memory.DefaultListLimit)
				if err != nil {
					return nil, err
				}
				items, err := store.List(ctx, string(caller.Agent), caller.UserID, limit)
				if err != nil {
					return nil, err
				}
				if items == nil {
					items = []memory.Memory{}
				}
				return items, nil
			},
		},
		{
			Name:        ToolMemoryUpdate,
			Description: "Replace the content of a remembered fact by its id.",
			Params: []Param{
				{Name: "id", Type: schema.String, Desc: "Memory id", Required: true},
				{Name: "content", Type: schema.String, Desc: "New content", Required: true},
				topics,
			},
			Agents:         agents,
			RequiresCaller: true,
			Call: func(ctx context.Context, args Args) (any, error) {
				caller, ok := contractx.CallerFrom(ctx)
				if !ok {
					return nil, errNoCaller
				}
				id, err := args.String("id")
				if err != nil {
					return nil, err
				}
				content, err := args.String("content")
				if err != nil {
					return nil, err
				}
				return store.Update(ctx, string(caller.Agent), caller.UserID, id, content, args.Strings("topics"))
			},
		},
		{
			Name:        ToolMemoryDelete,
			Description: "Forget a remembered fact by its id, e.g. a movie that was watched.",
			Params: []Param{
				{Name: "id", Type: schema.String, Desc: "Memory id", Required: true},
			},
			Agents:         agents,
			RequiresCaller: true,
			Call: func(ctx context.Context, args Args) (any, error) {
				caller, ok := contractx.CallerFrom(ctx)
				if !ok {
					return nil, errNoCaller
				}
				id, err := args.String("id")
				if err != nil {
					return nil, err
				}
				if err := store.Delete(ctx, string(caller.Agent), caller.UserID, id); err != nil {
					return nil, err
				}
				return MemoryDeleted{ID: id, Deleted: true}, nil
			},
		},
	}
}
