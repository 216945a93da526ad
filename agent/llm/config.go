package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/spark/agent/contract"
	openrouterx "github.com/tanpawarit/spark/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel             string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	RecipesModel            string  `envconfig:"RECIPES_MODEL" split_words:"true"`
	MoviesModel             string  `envconfig:"MOVIES_MODEL" split_words:"true"`
	CelebrationsModel       string  `envconfig:"CELEBRATIONS_MODEL" split_words:"true"`
	RouterTemperature       float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"0"`
	RecipesTemperature      float32 `envconfig:"RECIPES_TEMPERATURE" split_words:"true" default:"-1"`
	MoviesTemperature       float32 `envconfig:"MOVIES_TEMPERATURE" split_words:"true" default:"-1"`
	CelebrationsTemperature float32 `envconfig:"CELEBRATIONS_TEMPERATURE" split_words:"true" default:"-1"`

	SessionSummaries bool   `envconfig:"SESSION_SUMMARIES" split_words:"true" default:"true"`
	SummaryModel     string `envconfig:"SUMMARY_MODEL" split_words:"true"`
	MaxToolSteps     int    `envconfig:"MAX_TOOL_STEPS" split_words:"true" default:"6"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxToolSteps < 0 {
		return fmt.Errorf("%w: max tool steps must be >= 0", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor applies the per-agent model and temperature overrides.
// A negative override temperature keeps the default.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	var overrideModel string
	overrideTemp := float32(-1)
	switch agentType {
	case contractx.AgentTypeRouter:
		overrideModel, overrideTemp = c.RouterModel, c.RouterTemperature
	case contractx.AgentTypeRecipes:
		overrideModel, overrideTemp = c.RecipesModel, c.RecipesTemperature
	case contractx.AgentTypeMovies:
		overrideModel, overrideTemp = c.MoviesModel, c.MoviesTemperature
	case contractx.AgentTypeCelebrations:
		overrideModel, overrideTemp = c.CelebrationsModel, c.CelebrationsTemperature
	}
	if v := strings.TrimSpace(overrideModel); v != "" {
		modelName = v
	}
	if overrideTemp >= 0 {
		temp = overrideTemp
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) SummaryModelName() string {
	if v := strings.TrimSpace(c.SummaryModel); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}
