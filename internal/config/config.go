// Package config defines the bot configuration and how it is loaded.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load layers a YAML file and WORDLE_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/wordle-buddy/internal/adapters/repository"
	"github.com/okian/wordle-buddy/internal/domain/command"
	"github.com/okian/wordle-buddy/internal/domain/period"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`
	// LogFile redirects logs to a file when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the result store: json or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// ResultsDir is the root of the json store.
	ResultsDir string `koanf:"results_dir"`
	// SQLitePath is the database file of the sqlite store.
	SQLitePath string `koanf:"sqlite_path"`

	// Epoch is the civil date of puzzle 0, YYYY-MM-DD.
	Epoch string `koanf:"epoch"`
	// Timezone is the IANA zone days are counted in. Empty means Local.
	Timezone string `koanf:"timezone"`

	CommandPrefix string `koanf:"command_prefix"`
	WatchChannel  string `koanf:"watch_channel"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize bounds how many acknowledged message ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
	// ScrapeLimit caps how many history messages one scrape considers.
	ScrapeLimit int `koanf:"scrape_limit"`

	// RateLimit is the API request rate per second; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		StoreDriver:   repository.DriverJSON,
		ResultsDir:    "results",
		SQLitePath:    "wordle.db",
		Epoch:         period.DefaultEpoch,
		CommandPrefix: command.DefaultPrefix,
		QueueSize:     1024,
		DedupeSize:    50_000,
		ScrapeLimit:   500,
		RateLimit:     20,
		RateBurst:     40,
	}
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Calendar builds the puzzle calendar from Epoch and Timezone.
func (c *Config) Calendar() (period.Calendar, error) {
	loc, err := c.Location()
	if err != nil {
		return period.Calendar{}, err
	}
	cal, err := period.New(c.Epoch, loc)
	if err != nil {
		return period.Calendar{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cal, nil
}

// StoreLocation returns the directory or file the selected driver opens.
func (c *Config) StoreLocation() string {
	if c.StoreDriver == repository.DriverSQLite {
		return c.SQLitePath
	}
	return c.ResultsDir
}

// Validate checks that the configuration can start the bot.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case repository.DriverJSON, repository.DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.StoreLocation() == "" {
		return fmt.Errorf("%w: %s store needs a location", ErrInvalidConfig, c.StoreDriver)
	}
	if c.CommandPrefix == "" || strings.ContainsAny(c.CommandPrefix, " \t\r\n") {
		return fmt.Errorf("%w: command_prefix must be a single token", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 || c.DedupeSize <= 0 || c.ScrapeLimit <= 0 {
		return fmt.Errorf("%w: queue_size, dedupe_size and scrape_limit must be positive", ErrInvalidConfig)
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateBurst <= 0) {
		return fmt.Errorf("%w: rate_burst must be positive when rate_limit is set", ErrInvalidConfig)
	}
	_, err := c.Calendar()
	return err
}
