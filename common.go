package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	configFileName = ".roomsync.toml"

	// Google's legacy token endpoint. It still answers refresh_token grants.
	defaultTokenURL = "https://accounts.google.com/o/oauth2/token"

	defaultInterval    = 15 * time.Second
	defaultHorizonDays = 5
	defaultHTTPTimeout = 10 * time.Second
	defaultDatabase    = ".roomsync.db"
)

// ErrConfigurationMissing is returned when required host configuration is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

type CalDAVConfig struct {
	ServerURL string `toml:"server_url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// Duration lets toml decode "15s" style values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

type Config struct {
	ClientID       string       `toml:"client_id"`
	ClientSecret   string       `toml:"client_secret"`
	RefreshToken   string       `toml:"refresh_token"`
	CalendarID     string       `toml:"calendar_id"`
	Provider       string       `toml:"provider"`
	VerbosityLevel int          `toml:"verbosity_level"`
	Interval       Duration     `toml:"interval"`
	HorizonDays    int          `toml:"horizon_days"`
	WeekStart      string       `toml:"week_start"`
	Timezone       string       `toml:"timezone"`
	HTTPTimeout    Duration     `toml:"http_timeout"`
	TokenURL       string       `toml:"token_url"`
	APIEndpoint    string       `toml:"api_endpoint"`
	Database       string       `toml:"database"`
	DisableJournal bool         `toml:"disable_journal"`
	CalDAV         CalDAVConfig `toml:"caldav"`
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = "google"
	}
	if c.Interval.Duration <= 0 {
		c.Interval.Duration = defaultInterval
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday":
		c.WeekStart = "sunday"
	default:
		c.WeekStart = "monday"
	}
	if c.HTTPTimeout.Duration <= 0 {
		c.HTTPTimeout.Duration = defaultHTTPTimeout
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.Database == "" {
		c.Database = defaultDatabase
	}
}

// Validate reports every required key that is empty.
func (c *Config) Validate() error {
	var missing []string
	switch c.Provider {
	case "google":
		if c.ClientID == "" {
			missing = append(missing, "client_id")
		}
		if c.ClientSecret == "" {
			missing = append(missing, "client_secret")
		}
		if c.RefreshToken == "" {
			missing = append(missing, "refresh_token")
		}
	case "caldav":
		if c.CalDAV.ServerURL == "" {
			missing = append(missing, "caldav.server_url")
		}
	default:
		return fmt.Errorf("%w: unsupported provider %q", ErrConfigurationMissing, c.Provider)
	}
	if c.CalendarID == "" {
		missing = append(missing, "calendar_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone, falling back to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) weekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// configCandidates lists the places a config file is looked for, most specific first.
func configCandidates(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	return []string{
		configFileName,
		filepath.Join(xdg.ConfigHome, "roomsync", configFileName),
		filepath.Join(os.Getenv("HOME"), configFileName),
	}
}

func readConfig(explicit string) (*Config, error) {
	// A missing .env is fine; variables may come from the environment itself.
	_ = godotenv.Load()

	var (
		data []byte
		err  error
		path string
	)
	for _, candidate := range configCandidates(explicit) {
		data, err = os.ReadFile(candidate)
		if err == nil {
			path = candidate
			break
		}
	}

	var config Config
	if path != "" {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if explicit != "" {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&config)
	config.Normalize()
	return &config, nil
}

func applyEnv(config *Config) {
	overrides := map[string]*string{
		"ROOMSYNC_CLIENT_ID":     &config.ClientID,
		"ROOMSYNC_CLIENT_SECRET": &config.ClientSecret,
		"ROOMSYNC_REFRESH_TOKEN": &config.RefreshToken,
		"ROOMSYNC_CALENDAR_ID":   &config.CalendarID,
	}
	for name, field := range overrides {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
}

func openDB(filename string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", filename, err)
	}
	// One writer; the loop records a single row per cycle.
	db.SetMaxOpenConns(1)
	return db, nil
}

// newLogger maps verbosity_level onto zap levels:
// 0 - errors only
// 1 - cycle summaries
// 2 - fetch windows and every event
func newLogger(verbosity int) (*zap.Logger, error) {
	if verbosity >= 2 {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbosity <= 0 {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return cfg.Build()
}
