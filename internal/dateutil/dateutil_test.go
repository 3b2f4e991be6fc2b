package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 2, 1, 23, 59, 59, 999, time.Local)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), StartOfDay(ts))
	assert.Equal(t, StartOfDay(ts), StartOfDay(StartOfDay(ts)))
}

func TestStartOfWeekIsMonday(t *testing.T) {
	// 2026-02-02 is a Monday.
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, time.Local)
	for d := 0; d < 7; d++ {
		got := StartOfWeek(monday.AddDate(0, 0, d).Add(15 * time.Hour))
		assert.Equal(t, monday, got, "day offset %d", d)
	}
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 2, 8, 10, 0, 0, 0, time.Local)
	assert.Equal(t, monday, StartOfWeek(sunday))
}

func TestStartOfMonth(t *testing.T) {
	ts := time.Date(2026, 2, 28, 18, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), StartOfMonth(ts))
}
