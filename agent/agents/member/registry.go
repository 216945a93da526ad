package member

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
	llmx "github.com/tanpawarit/spark/agent/llm"
	promptx "github.com/tanpawarit/spark/agent/prompt"
)

// ToolProvider describes and runs the tools granted to each member.
type ToolProvider interface {
	contractx.ToolGateway
	InfosFor(agentType contractx.AgentType) []*schema.ToolInfo
}

type Options struct {
	Prompts      promptx.PromptSet
	Tools        ToolProvider
	Memories     contractx.MemoryReader
	MaxToolSteps int
}

type registryImpl struct {
	router  contractx.Router
	members map[contractx.AgentType]contractx.Member
}

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Member(agentType contractx.AgentType) (contractx.Member, bool) {
	m, ok := r.members[agentType]
	return m, ok
}

// NewRegistry builds one chat model per agent from cfg and wires the team.
func NewRegistry(ctx context.Context, cfg llmx.Config, opts Options) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxToolSteps <= 0 {
		opts.MaxToolSteps = cfg.MaxToolSteps
	}

	agents := append([]contractx.AgentType{contractx.AgentTypeRouter}, contractx.Members...)
	models := make(map[contractx.AgentType]einomodel.ToolCallingChatModel, len(agents))
	for _, agentType := range agents {
		modelCfg := cfg.OpenRouterFor(agentType)
		m, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		models[agentType] = m
	}

	return Assemble(ctx, models, opts)
}

// Assemble wires the router and members around already built chat models.
func Assemble(ctx context.Context, models map[contractx.AgentType]einomodel.ToolCallingChatModel, opts Options) (contractx.Registry, error) {
	routerModel, ok := models[contractx.AgentTypeRouter]
	if !ok || routerModel == nil {
		return nil, fmt.Errorf("%w: router model is required", contractx.ErrValidation)
	}
	router, err := newRouter(ctx, routerModel, opts.Prompts.Router)
	if err != nil {
		return nil, err
	}

	reg := &registryImpl{
		router:  router,
		members: make(map[contractx.AgentType]contractx.Member, len(contractx.Members)),
	}
	for _, agentType := range contractx.Members {
		chatModel, ok := models[agentType]
		if !ok || chatModel == nil {
			return nil, fmt.Errorf("%w: %s model is required", contractx.ErrValidation, agentType)
		}

		var (
			infos   []*schema.ToolInfo
			gateway contractx.ToolGateway
		)
		if opts.Tools != nil {
			infos = opts.Tools.InfosFor(agentType)
			gateway = opts.Tools
		}

		m, err := newMember(ctx, agentType, chatModel, opts.Prompts.ForMember(agentType), infos, gateway, opts.Memories, opts.MaxToolSteps)
		if err != nil {
			return nil, err
		}
		reg.members[agentType] = m
	}
	return reg, nil
}
