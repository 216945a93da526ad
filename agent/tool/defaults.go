package tool

import (
	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/agent/memory"
	"github.com/tanpawarit/spark/pkg/movie"
	"github.com/tanpawarit/spark/pkg/nameday"
	"github.com/tanpawarit/spark/pkg/webpage"
)

type Deps struct {
	Clock    Clock
	NameDays nameday.Catalog
	Movies   MovieFetcher
	Pages    PageReader

	// Memory is optional. Without it the memory tools are not registered.
	Memory memory.Store
}

// NewDefaultRegistry grants each member agent its tools.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	if deps.Movies == nil {
		deps.Movies = movie.NewFetcher()
	}
	if deps.Pages == nil {
		deps.Pages = webpage.NewReader()
	}

	var specs []Spec
	specs = append(specs, DateTimeTools(deps.Clock, contractx.AgentTypeCelebrations)...)
	specs = append(specs, NameDayTools(deps.NameDays, deps.Clock, contractx.AgentTypeCelebrations)...)
	specs = append(specs,
		MovieTool(deps.Movies, contractx.AgentTypeMovies),
		WebpageTool(deps.Pages, contractx.AgentTypeRecipes),
		MathTool(contractx.AgentTypeRecipes),
	)
	if deps.Memory != nil {
		specs = append(specs, MemoryTools(deps.Memory, contractx.Members...)...)
	}
	return NewRegistry(specs...)
}
