package tool

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/pkg/datefacts"
)

const (
	ToolCurrentDateTime = "get_current_datetime"
	ToolDayOfWeek       = "get_day_of_week"
)

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func DateTimeTools(clock Clock, agents ...contractx.AgentType) []Spec {
	return []Spec{
		{
			Name:        ToolCurrentDateTime,
			Description: "Get the current date (YYYY-MM-DD), time (HH:MM:SS), day of week and month-day key (MM-DD).",
			Agents:      agents,
			Call: func(context.Context, Args) (any, error) {
				return datefacts.CurrentDateTime(clock.now()), nil
			},
		},
		{
			Name:        ToolDayOfWeek,
			Description: "Get the day of the week for a date in YYYY-MM-DD format.",
			Params: []Param{
				{Name: "date", Type: schema.String, Desc: "Date in YYYY-MM-DD format", Required: true, SelfChecked: true},
			},
			Agents: agents,
			Call: func(_ context.Context, args Args) (any, error) {
				// the date is echoed back untouched; invalid input is reported inside the result
				return datefacts.DayOfWeek(args.Raw("date")), nil
			},
		},
	}
}
