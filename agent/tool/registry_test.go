package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

func echoSpec(name string, agents ...contractx.AgentType) Spec {
	return Spec{
		Name:        name,
		Description: "echo",
		Params:      []Param{{Name: "text", Type: schema.String, Required: true}},
		Agents:      agents,
		Call: func(_ context.Context, args Args) (any, error) {
			return args.String("text")
		},
	}
}

func TestNewRegistryRejectsInvalidSpecs(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(echoSpec("a"), echoSpec("a")); !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("duplicate error = %v, want ErrDuplicateTool", err)
	}
	if _, err := NewRegistry(echoSpec(" ")); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("empty name error = %v, want ErrInvalidSpec", err)
	}
	if _, err := NewRegistry(Spec{Name: "nofunc"}); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("nil func error = %v, want ErrInvalidSpec", err)
	}
}

func TestRegistryCallReportsErrorsInResult(t *testing.T) {
	t.Parallel()

	r := MustNewRegistry(
		echoSpec("echo", contractx.AgentTypeRecipes),
		Spec{
			Name: "boom",
			Call: func(context.Context, Args) (any, error) { panic("kaboom") },
		},
		Spec{
			Name:           "private",
			RequiresCaller: true,
			Call:           func(context.Context, Args) (any, error) { return "ok", nil },
		},
	)
	ctx := context.Background()

	if got := r.Call(ctx, "echo", map[string]any{"text": "hi"}); got.Error != "" || got.Result != "hi" {
		t.Fatalf("Call(echo) = %+v", got)
	}
	if got := r.Call(ctx, "echo", map[string]any{}); got.Error != "missing required argument: text" {
		t.Fatalf("Call(echo) without args = %+v", got)
	}
	if got := r.Call(ctx, "nope", nil); !strings.Contains(got.Error, "unknown tool") {
		t.Fatalf("Call(nope) = %+v", got)
	}
	if got := r.Call(ctx, "boom", nil); got.Error == "" || got.Result != nil {
		t.Fatalf("Call(boom) = %+v, want recovered error", got)
	}
	if got := r.Call(ctx, "private", nil); !strings.Contains(got.Error, "requires a user context") {
		t.Fatalf("Call(private) without caller = %+v", got)
	}
	withCaller := contractx.WithCaller(ctx, contractx.Caller{UserID: "1", Agent: contractx.AgentTypeMovies})
	if got := r.Call(withCaller, "private", nil); got.Error != "" || got.Result != "ok" {
		t.Fatalf("Call(private) with caller = %+v", got)
	}
}

func TestRegistryExecuteEnforcesGrants(t *testing.T) {
	t.Parallel()

	r := MustNewRegistry(echoSpec("echo", contractx.AgentTypeRecipes))
	out, err := r.Execute(context.Background(), contractx.AgentTypeMovies, []contractx.ToolRequest{
		{Tool: "echo", Args: map[string]any{"text": "x"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(out) != 1 || out[0].Error != "tool=echo is unavailable for agent=movies" {
		t.Fatalf("Execute() = %+v", out)
	}

	out, err = r.Execute(context.Background(), contractx.AgentTypeRecipes, []contractx.ToolRequest{
		{Tool: "echo", Args: map[string]any{"text": "x"}},
	})
	if err != nil || len(out) != 1 || out[0].Result != "x" {
		t.Fatalf("Execute() for granted agent = %+v, %v", out, err)
	}
}

func TestRegistryExecuteStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := MustNewRegistry(echoSpec("echo", contractx.AgentTypeRecipes))
	_, err := r.Execute(ctx, contractx.AgentTypeRecipes, []contractx.ToolRequest{{Tool: "echo"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestInfosForFiltersByAgent(t *testing.T) {
	t.Parallel()

	r := MustNewRegistry(
		echoSpec("first", contractx.AgentTypeRecipes, contractx.AgentTypeMovies),
		echoSpec("second", contractx.AgentTypeMovies),
		Spec{
			Name:   "tags",
			Params: []Param{{Name: "topics", Type: schema.Array}},
			Agents: []contractx.AgentType{contractx.AgentTypeMovies},
			Call:   func(context.Context, Args) (any, error) { return nil, nil },
		},
	)

	infos := r.InfosFor(contractx.AgentTypeMovies)
	if len(infos) != 3 {
		t.Fatalf("expected 3 tool infos, got %d", len(infos))
	}
	if infos[0].Name != "first" || infos[1].Name != "second" || infos[2].Name != "tags" {
		t.Fatalf("unexpected order: %s %s %s", infos[0].Name, infos[1].Name, infos[2].Name)
	}
	if infos[0].ParamsOneOf == nil {
		t.Fatal("params must be described")
	}
	if got := r.InfosFor(contractx.AgentTypeCelebrations); len(got) != 0 {
		t.Fatalf("celebrations should have no tools, got %d", len(got))
	}
}

func TestArgsInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{in: nil, want: 7},
		{in: float64(3), want: 3},
		{in: "12", want: 12},
		{in: 2.5, wantErr: true},
		{in: "abc", wantErr: true},
		{in: true, wantErr: true},
	}
	for _, tc := range cases {
		got, err := Args{"n": tc.in}.Int("n", 7)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Int(%v) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("Int(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestArgsStrings(t *testing.T) {
	t.Parallel()

	if got := (Args{"t": []any{"a", 1, "b"}}).Strings("t"); len(got) != 2 || got[1] != "b" {
		t.Fatalf("Strings([]any) = %v", got)
	}
	if got := (Args{"t": "a,b"}).Strings("t"); len(got) != 2 {
		t.Fatalf("Strings(csv) = %v", got)
	}
	if got := (Args{}).Strings("t"); got != nil {
		t.Fatalf("Strings(missing) = %v", got)
	}
}
