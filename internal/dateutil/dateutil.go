// Package dateutil normalizes timestamps to the start of their calendar unit.
// Plan records are keyed by these values, so the same function must be applied
// when a key is written and when it is queried — otherwise lookups miss and
// duplicate rows appear.
package dateutil

import "time"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	return day.AddDate(0, 0, -(wd - 1))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
