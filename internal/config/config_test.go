package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "UTC", cfg.Booking.DefaultTimezone)
	assert.Equal(t, "24h", cfg.Booking.HourType)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CORS.AllowMethods)
	assert.True(t, cfg.Calendar.WritableOnly)
	assert.False(t, cfg.CalDAV.Enabled())
}

func TestLoadFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=https://api.example.com/api\nHOUR_TYPE=12h\n"), 0o600))

	t.Cleanup(func() { os.Unsetenv("API_BASE_URL") })
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Paris")
	t.Setenv("HOUR_TYPE", "24h")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://book.example.com")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "24h", cfg.Booking.HourType)
	assert.Equal(t, "Europe/Paris", cfg.Booking.DefaultTimezone)
	assert.Equal(t, []string{"https://book.example.com"}, cfg.CORS.AllowOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.ErrorContains(t, err, "DEFAULT_TIMEZONE")

	t.Setenv("DEFAULT_TIMEZONE", "UTC")
	t.Setenv("HOUR_TYPE", "36h")
	_, err = Load()
	assert.ErrorContains(t, err, "HOUR_TYPE")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "verbose"}.SlogLevel())
}

func TestCalDAVEnabled(t *testing.T) {
	c := CalDAVConfig{Username: "u", Password: "p", CalendarName: "Bookings"}
	assert.True(t, c.Enabled())
	c.Password = ""
	assert.False(t, c.Enabled())
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
