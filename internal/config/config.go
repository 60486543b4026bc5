// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"calbook/internal/slot"
)

type Config struct {
	API      APIConfig
	Booking  BookingConfig
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Google   GoogleConfig
	CalDAV   CalDAVConfig
	Calendar CalendarConfig
}

type APIConfig struct {
	BaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
	Timeout     time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	SessionFile string        `envconfig:"SESSION_FILE" default:"session.json"`
}

type BookingConfig struct {
	AppURL          string `envconfig:"APP_URL" default:"http://localhost:8080"`
	DefaultTimezone string `envconfig:"DEFAULT_TIMEZONE" default:"UTC"`
	HourType        string `envconfig:"HOUR_TYPE" default:"24h"`
}

type ServerConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `envconfig:"GOOGLE_TOKEN_FILE" default:"google-token.json"`
}

type CalDAVConfig struct {
	Endpoint     string `envconfig:"CALDAV_ENDPOINT" default:"https://caldav.icloud.com/"`
	Username     string `envconfig:"CALDAV_USERNAME"`
	Password     string `envconfig:"CALDAV_PASSWORD"`
	CalendarName string `envconfig:"CALDAV_CALENDAR_NAME"`
}

// CalendarConfig controls the calendar picker of the event type flow.
type CalendarConfig struct {
	WritableOnly bool `envconfig:"CALENDARS_WRITABLE_ONLY" default:"true"`
}

// Enabled reports whether a CalDAV account is configured.
func (c CalDAVConfig) Enabled() bool {
	return c.Username != "" && c.Password != "" && c.CalendarName != ""
}

// Load reads the given .env files (or ./.env) when present and then
// processes the environment. Variables already set take precedence.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE '%s': %w", c.Booking.DefaultTimezone, err)
	}
	if _, err := slot.ParseHourType(c.Booking.HourType); err != nil {
		return fmt.Errorf("invalid HOUR_TYPE: %w", err)
	}
	return nil
}

// SlogLevel maps Log.Level onto a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTestConfig returns defaults suitable for tests.
func NewTestConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "http://localhost:18000/api",
			Timeout:     5 * time.Second,
			SessionFile: "session-test.json",
		},
		Booking: BookingConfig{
			AppURL:          "http://localhost:18080",
			DefaultTimezone: "UTC",
			HourType:        "24h",
		},
		Server: ServerConfig{ListenAddr: ":18080"},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       time.Hour,
		},
		Log:      LogConfig{Level: "error"},
		Calendar: CalendarConfig{WritableOnly: true},
	}
}
