package entity

import (
	"fmt"
	"time"
)

// TimeWindow is a half-open interval [Start, End) costs are aggregated
// over. Billing export timestamps equal to End belong to the next window.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects windows whose start falls after their end.
func (w TimeWindow) Validate() error {
	if w.Start.After(w.End) {
		return fmt.Errorf("window start %s is after end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// IsZero reports whether the window is unset.
func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Days returns the window length in whole days, never less than 1.
func (w TimeWindow) Days() int {
	d := int(w.End.Sub(w.Start).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Label renders the window for table headers and report text.
func (w TimeWindow) Label() string {
	const layout = "2006-01-02"
	if w.End.Sub(w.Start) <= 24*time.Hour {
		return w.Start.Format(layout)
	}
	return fmt.Sprintf("%s to %s", w.Start.Format(layout), w.End.Add(-time.Second).Format(layout))
}

// Previous returns the window of equal length ending where w starts.
func (w TimeWindow) Previous() TimeWindow {
	span := w.End.Sub(w.Start)
	return TimeWindow{Start: w.Start.Add(-span), End: w.Start}
}

// DayWindow returns the full UTC day containing t.
func DayWindow(t time.Time) TimeWindow {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: day, End: day.AddDate(0, 0, 1)}
}

// LastNDays returns the n complete UTC days before the day containing now.
// Today is excluded: its billing data has not fully landed yet.
func LastNDays(now time.Time, n int) TimeWindow {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: end.AddDate(0, 0, -n), End: end}
}

// MonthToDate returns the window from the first of now's month through the
// last complete day. On the first of the month the window is empty.
func MonthToDate(now time.Time) TimeWindow {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: start, End: end}
}

// DaysRemainingInMonth counts the days of now's month still ahead, today
// excluded.
func DaysRemainingInMonth(now time.Time) int {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	return lastDay - now.Day()
}
