package nameday

import (
	"time"

	"github.com/tanpawarit/spark/pkg/datefacts"
)

const (
	LabelToday    = "today"
	LabelTomorrow = "tomorrow"
)

type Celebration struct {
	Date          string   `json:"date"`
	Names         []string `json:"names"`
	RelativeLabel string   `json:"relative_label"`
}

// Upcoming lists the window starting at today in ascending date order.
// Days without names are kept with an empty Names slice.
func Upcoming(c Catalog, today time.Time, windowDays int) []Celebration {
	if windowDays <= 0 {
		return []Celebration{}
	}

	out := make([]Celebration, 0, windowDays)
	for offset := 0; offset < windowDays; offset++ {
		day := today.AddDate(0, 0, offset)
		date := day.Format(datefacts.DateLayout)

		label := date
		switch offset {
		case 0:
			label = LabelToday
		case 1:
			label = LabelTomorrow
		}

		out = append(out, Celebration{
			Date:          date,
			Names:         c.Names(datefacts.MonthDay(day)),
			RelativeLabel: label,
		})
	}
	return out
}
