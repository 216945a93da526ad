package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/pkg/nameday"
)

const (
	ToolReadNameDays         = "read_name_days"
	ToolUpcomingCelebrations = "upcoming_celebrations"
	ToolFindNameDay          = "find_name_day"
)

const (
	DefaultCelebrationWindow = 7
	maxCelebrationWindowDays = 366
)

type NameDayMatch struct {
	Name  string   `json:"name"`
	Dates []string `json:"dates"`
}

func NameDayTools(catalog nameday.Catalog, clock Clock, agents ...contractx.AgentType) []Spec {
	return []Spec{
		{
			Name:        ToolReadNameDays,
			Description: "Read the whole name day calendar as a map of MM-DD to the names celebrated that day.",
			Agents:      agents,
			Call: func(context.Context, Args) (any, error) {
				return catalog.Entries(), nil
			},
		},
		{
			Name:        ToolUpcomingCelebrations,
			Description: "List name days from today for the given number of days. Each day is labelled today, tomorrow or its date.",
			Params: []Param{
				{Name: "days", Type: schema.Integer, Desc: "Window length in days, default 7"},
			},
			Agents: agents,
			Call: func(_ context.Context, args Args) (any, error) {
				days, err := args.Int("days", DefaultCelebrationWindow)
				if err != nil {
					return nil, err
				}
				if days < 1 || days > maxCelebrationWindowDays {
					return nil, fmt.Errorf("days must be between 1 and %d", maxCelebrationWindowDays)
				}
				return nameday.Upcoming(catalog, clock.now(), days), nil
			},
		},
		{
			Name:        ToolFindNameDay,
			Description: "Find the MM-DD dates on which a first name has its name day.",
			Params: []Param{
				{Name: "name", Type: schema.String, Desc: "First name, e.g. Prokop", Required: true},
			},
			Agents: agents,
			Call: func(_ context.Context, args Args) (any, error) {
				name, err := args.String("name")
				if err != nil {
					return nil, err
				}
				return NameDayMatch{Name: name, Dates: catalog.Find(name)}, nil
			},
		},
	}
}
