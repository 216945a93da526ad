package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/tanpawarit/spark/agent/contract"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/recipes.txt
	recipesRaw string

	//go:embed template/movies.txt
	moviesRaw string

	//go:embed template/celebrations.txt
	celebrationsRaw string
)

// PromptSet holds the system prompt of every agent.
// Router is an FString template: literal braces are doubled.
type PromptSet struct {
	Router       string
	Recipes      string
	Movies       string
	Celebrations string
}

func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:       strings.TrimSpace(routerRaw),
		Recipes:      strings.TrimSpace(recipesRaw),
		Movies:       strings.TrimSpace(moviesRaw),
		Celebrations: strings.TrimSpace(celebrationsRaw),
	}
}

func (p PromptSet) ForMember(agentType contractx.AgentType) string {
	switch agentType {
	case contractx.AgentTypeRecipes:
		return p.Recipes
	case contractx.AgentTypeMovies:
		return p.Movies
	case contractx.AgentTypeCelebrations:
		return p.Celebrations
	default:
		return ""
	}
}
