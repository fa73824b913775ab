package pipeline

import (
	"fmt"
	"time"

	"fxhashETL/internal/teztok"
)

// FirstFxhashDay is the day of the first fxhash transaction (2021-11-03T12:28:02Z).
const FirstFxhashDay = "2021-11-03"

// SplitDays returns every calendar day in the inclusive range [from, to].
func SplitDays(from, to string) ([]string, error) {
	start, err := time.Parse(teztok.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from day: %w", err)
	}
	end, err := time.Parse(teztok.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to day: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("to day must be >= from day")
	}

	days := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(teztok.DateLayout))
	}
	return days, nil
}

// NextDay returns the calendar day after day.
func NextDay(day string) (string, error) {
	parsed, err := time.Parse(teztok.DateLayout, day)
	if err != nil {
		return "", fmt.Errorf("invalid day: %w", err)
	}
	return parsed.AddDate(0, 0, 1).Format(teztok.DateLayout), nil
}

// Yesterday returns the last complete UTC day relative to now.
func Yesterday(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format(teztok.DateLayout)
}
