// Package datefacts answers calendar questions for the celebrations agent.
package datefacts

import "time"

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	MonthDayLayout = "01-02"
)

// InvalidDateMessage is reported in DayOfWeekResult.Error for unparsable input.
const InvalidDateMessage = "Invalid date format. Please use YYYY-MM-DD format."

type Now struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	DayOfWeek string `json:"day_of_week"`
	MonthDay  string `json:"month_day"`
}

// DayOfWeekResult carries either DayOfWeek or Error, never both.
type DayOfWeekResult struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (r DayOfWeekResult) OK() bool {
	return r.Error == ""
}

// CurrentDateTime formats every field from the same instant.
func CurrentDateTime(now time.Time) Now {
	return Now{
		Date:      now.Format(DateLayout),
		Time:      now.Format(TimeLayout),
		DayOfWeek: now.Weekday().String(),
		MonthDay:  now.Format(MonthDayLayout),
	}
}

func DayOfWeek(dateStr string) DayOfWeekResult {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return DayOfWeekResult{
			Date:  dateStr,
			Error: InvalidDateMessage,
		}
	}
	return DayOfWeekResult{
		Date:      dateStr,
		DayOfWeek: t.Weekday().String(),
	}
}

// MonthDay returns the MM-DD key used by the name-day catalog.
func MonthDay(t time.Time) string {
	return t.Format(MonthDayLayout)
}

// ValidMonthDay reports whether key is a real MM-DD calendar day. 02-29 is valid.
func ValidMonthDay(key string) bool {
	if len(key) != len(MonthDayLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, "2000-"+key)
	return err == nil
}
