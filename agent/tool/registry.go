package tool

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

var (
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidSpec   = errors.New("invalid tool spec")
)

// Func runs a tool. A returned error is reported to the model as ToolResult.Error.
type Func func(ctx context.Context, args Args) (any, error)

type Param struct {
	Name     string
	Type     schema.DataType
	Elem     schema.DataType // item type of arrays
	Desc     string
	Required bool

	// SelfChecked params bypass the required check in Call; the tool reports bad values itself.
	SelfChecked bool
}

type Spec struct {
	Name        string
	Description string
	Params      []Param

	// Agents that may call the tool.
	Agents []contractx.AgentType

	// RequiresCaller tools read the user identity from the context.
	RequiresCaller bool

	Call Func
}

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Registry is the explicit manifest of every tool the assistant can call.
type Registry struct {
	specs map[string]Spec
	order []string
}

func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidSpec)
		}
		if s.Call == nil {
			return nil, fmt.Errorf("%w: tool %q has no func", ErrInvalidSpec, name)
		}
		if _, exists := r.specs[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		s.Name = name
		r.specs[name] = s
		r.order = append(r.order, name)
	}
	return r, nil
}

func MustNewRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Spec(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Specs returns every tool in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

func (r *Registry) Allowed(agentType contractx.AgentType, name string) bool {
	s, ok := r.specs[name]
	return ok && slices.Contains(s.Agents, agentType)
}

// Call runs one tool by name. It never returns a Go error.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (res contractx.ToolResult) {
	res.Tool = name
	s, ok := r.specs[name]
	if !ok {
		res.Error = fmt.Sprintf("unknown tool: %s", name)
		return res
	}
	if s.RequiresCaller {
		if _, ok := contractx.CallerFrom(ctx); !ok {
			res.Error = fmt.Sprintf("tool=%s requires a user context", name)
			return res
		}
	}
	for _, p := range s.Params {
		if p.Required && !p.SelfChecked && Args(args).missing(p.Name) {
			res.Error = fmt.Sprintf("missing required argument: %s", p.Name)
			return res
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("tool", name).Interface("panic", rec).Msg("tool panicked")
			res.Result = nil
			res.Error = fmt.Sprintf("tool=%s failed unexpectedly", name)
		}
	}()

	out, err := s.Call(ctx, Args(args))
	if err != nil {
		log.Debug().Err(err).Str("tool", name).Msg("tool returned error")
		res.Error = err.Error()
		return res
	}
	res.Result = out
	return res
}

// Execute runs reqs for agentType. Tools the agent was not granted are reported as unavailable.
func (r *Registry) Execute(ctx context.Context, agentType contractx.AgentType, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	exec := r.ExecutorFor(agentType)
	out := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := exec(ctx, req.Tool, req.Args)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Registry) ExecutorFor(agentType contractx.AgentType) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		if err := ctx.Err(); err != nil {
			return contractx.ToolResult{}, err
		}
		if !r.Allowed(agentType, tool) {
			return unavailable(agentType, tool), nil
		}
		return r.Call(ctx, tool, args), nil
	}
}

func unavailable(agentType contractx.AgentType, tool string) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:  tool,
		Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentType),
	}
}

// InfosFor describes the tools granted to agentType for model binding.
func (r *Registry) InfosFor(agentType contractx.AgentType) []*schema.ToolInfo {
	var infos []*schema.ToolInfo
	for _, name := range r.order {
		s := r.specs[name]
		if !slices.Contains(s.Agents, agentType) {
			continue
		}
		infos = append(infos, toolInfo(s))
	}
	return infos
}

func toolInfo(s Spec) *schema.ToolInfo {
	info := &schema.ToolInfo{Name: s.Name, Desc: s.Description}
	if len(s.Params) == 0 {
		return info
	}
	params := make(map[string]*schema.ParameterInfo, len(s.Params))
	for _, p := range s.Params {
		pi := &schema.ParameterInfo{Type: p.Type, Desc: p.Desc, Required: p.Required}
		if p.Type == schema.Array {
			elem := p.Elem
			if elem == "" {
				elem = schema.String
			}
			pi.ElemInfo = &schema.ParameterInfo{Type: elem}
		}
		params[p.Name] = pi
	}
	info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	return info
}
