package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PIN_CODE", "")
	t.Setenv("REPORT_INTERVAL_HOURS", "")
	t.Setenv("REPORT_TIME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "organizer.db", cfg.DatabaseURL)
	assert.Equal(t, "1109", cfg.PINCode)
	assert.Equal(t, 5*time.Hour, cfg.ReportInterval)
	assert.Empty(t, cfg.ReportTime)
}

func TestLoadReportTime(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("PIN_CODE", "")

	t.Setenv("REPORT_TIME", "09:30")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "09:30", cfg.ReportTime)

	for _, at := range []string{"9pm", "25:00", "12:61"} {
		t.Setenv("REPORT_TIME", at)
		_, err := Load()
		require.Error(t, err, "time %q", at)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("PIN_CODE", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadPIN(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")

	for _, pin := range []string{"123", "12345", "12a4", "abcd"} {
		t.Setenv("PIN_CODE", pin)
		_, err := Load()
		require.Error(t, err, "pin %q", pin)
	}

	t.Setenv("PIN_CODE", "0042")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0042", cfg.PINCode)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseInterval(""))
	assert.Equal(t, 3*time.Hour, parseInterval("3"))
	assert.Equal(t, time.Duration(0), parseInterval("-1"))
	assert.Equal(t, time.Duration(0), parseInterval("abc"))
}
