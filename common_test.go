package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
client_id = "abc"
client_secret = "xyz"
refresh_token = "r1"
calendar_id = "room@resource.calendar.google.com"
verbosity_level = 2
interval = "30s"
week_start = "Sunday"
timezone = "Europe/Helsinki"
http_timeout = "4s"

[caldav]
server_url = "https://dav.example.com/"
username = "room"
`)

	cfg, err := readConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.ClientID)
	assert.Equal(t, "xyz", cfg.ClientSecret)
	assert.Equal(t, "r1", cfg.RefreshToken)
	assert.Equal(t, "room@resource.calendar.google.com", cfg.CalendarID)
	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, 2, cfg.VerbosityLevel)
	assert.Equal(t, 30*time.Second, cfg.Interval.Duration)
	assert.Equal(t, 4*time.Second, cfg.HTTPTimeout.Duration)
	assert.Equal(t, defaultHorizonDays, cfg.HorizonDays)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, time.Sunday, cfg.weekStartDay())
	assert.Equal(t, defaultTokenURL, cfg.TokenURL)
	assert.Equal(t, defaultDatabase, cfg.Database)
	assert.Equal(t, "https://dav.example.com/", cfg.CalDAV.ServerURL)
	assert.Equal(t, "room", cfg.CalDAV.Username)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Helsinki", loc.String())
}

func TestReadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
client_id = "from-file"
calendar_id = "file-room"
`)
	t.Setenv("ROOMSYNC_CLIENT_ID", "from-env")
	t.Setenv("ROOMSYNC_CLIENT_SECRET", "secret-env")
	t.Setenv("ROOMSYNC_REFRESH_TOKEN", "refresh-env")

	cfg, err := readConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ClientID)
	assert.Equal(t, "secret-env", cfg.ClientSecret)
	assert.Equal(t, "refresh-env", cfg.RefreshToken)
	assert.Equal(t, "file-room", cfg.CalendarID)
}

func TestReadConfigErrors(t *testing.T) {
	_, err := readConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = readConfig(writeConfig(t, `interval = "soon"`))
	assert.Error(t, err)

	_, err = readConfig(writeConfig(t, `client_id = `))
	assert.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{WeekStart: "friday"}
	cfg.Normalize()

	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, defaultInterval, cfg.Interval.Duration)
	assert.Equal(t, 5, cfg.HorizonDays)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, time.Monday, cfg.weekStartDay())
	assert.Equal(t, defaultHTTPTimeout, cfg.HTTPTimeout.Duration)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/token", cfg.TokenURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		missing []string
	}{
		{
			name:    "empty google config",
			config:  Config{},
			missing: []string{"client_id", "client_secret", "refresh_token", "calendar_id"},
		},
		{
			name:    "google without calendar",
			config:  Config{ClientID: "a", ClientSecret: "b", RefreshToken: "c"},
			missing: []string{"calendar_id"},
		},
		{
			name:    "caldav without server",
			config:  Config{Provider: "caldav", CalendarID: "/cal/room/"},
			missing: []string{"caldav.server_url"},
		},
		{
			name:    "unknown provider",
			config:  Config{Provider: "exchange", CalendarID: "room"},
			missing: []string{"exchange"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			cfg.Normalize()
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigurationMissing))
			for _, key := range tt.missing {
				assert.Contains(t, err.Error(), key)
			}
		})
	}

	valid := testConfig()
	valid.Normalize()
	assert.NoError(t, valid.Validate())

	badZone := testConfig()
	badZone.Timezone = "Mars/Olympus"
	badZone.Normalize()
	assert.Error(t, badZone.Validate())
}

func TestNewLogger(t *testing.T) {
	for _, verbosity := range []int{0, 1, 2} {
		logger, err := newLogger(verbosity)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	quiet, _ := newLogger(0)
	assert.False(t, quiet.Core().Enabled(-1))
	assert.False(t, quiet.Core().Enabled(0))

	loud, _ := newLogger(2)
	assert.True(t, loud.Core().Enabled(-1))
}
