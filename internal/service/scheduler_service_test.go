package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("08:30")
	require.NoError(t, err)
	assert.Equal(t, "30 8 * * *", spec)

	spec, err = buildDailySpec("00:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 * * *", spec)

	spec, err = buildDailySpec("23:59")
	require.NoError(t, err)
	assert.Equal(t, "59 23 * * *", spec)
}

func TestBuildDailySpecRejectsBadInput(t *testing.T) {
	for _, at := range []string{"", "morning", "24:00", "12:60", "9", "9:5:0"} {
		_, err := buildDailySpec(at)
		assert.Error(t, err, "time %q should be rejected", at)
	}
}

func TestScheduleDaily(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleDaily("07:15", func() {})
	require.NoError(t, err)

	_, err = s.ScheduleDaily("7 o'clock", func() {})
	assert.Error(t, err)
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	_, err = s.ScheduleInterval(time.Minute, func() {})
	require.NoError(t, err)
}
