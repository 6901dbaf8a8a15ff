package collector

import "time"

// Category is one themed digest run. Daily categories run every day; the
// others run on a fixed weekday or on a day-of-year interval.
type Category struct {
	ID             string
	Name           string
	Daily          bool
	Weekday        time.Weekday
	EveryNDays     int
	GenerateScript bool
	Prompt         func(PromptDates) string
}

var Categories = []Category{
	{
		ID:             "ai",
		Name:           "AI Tech News",
		Daily:          true,
		GenerateScript: true,
		Prompt:         aiPrompt,
	},
	{
		ID:     "politics",
		Name:   "Politics & Economy News",
		Daily:  true,
		Prompt: politicsPrompt,
	},
	{
		ID:      "papers",
		Name:    "AI Papers Survey",
		Weekday: time.Monday,
		Prompt:  papersPrompt,
	},
	{
		ID:         "serendipity",
		Name:       "Serendipity News",
		EveryNDays: 3,
		Prompt:     serendipityPrompt,
	},
}

// ShouldRun reports whether the category is scheduled for the given day.
// Interval categories key off the day of year so the cadence survives
// restarts without persisted state.
func (c Category) ShouldRun(now time.Time) bool {
	if c.Daily {
		return true
	}
	if c.EveryNDays > 0 {
		return now.YearDay()%c.EveryNDays == 0
	}
	return now.Weekday() == c.Weekday
}
