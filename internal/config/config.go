// Package config loads server and autopilot settings from the environment.
// An optional .env file in the working directory is read first; variables
// already set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Server configures cmd/tradersim.
type Server struct {
	Port        int     `env:"TRADER_PORT" envDefault:"8080"`
	DBPath      string  `env:"TRADER_DB_PATH" envDefault:"tradersim.db"`
	AdminKey    string  `env:"TRADER_ADMIN_KEY"`
	CatalogPath string  `env:"TRADER_CATALOG_PATH"`
	SlotID      string  `env:"TRADER_SLOT"`
	PlayerName  string  `env:"TRADER_PLAYER_NAME" envDefault:"Captain"`
	Autosave    string  `env:"TRADER_AUTOSAVE" envDefault:"@every 5m"`
	RateLimit   float64 `env:"TRADER_RATE_LIMIT" envDefault:"10"`
	RateBurst   int     `env:"TRADER_RATE_BURST" envDefault:"20"`
	LogLevel    string  `env:"LOG_LEVEL" envDefault:"info"`
	ForceEvent  bool    `env:"TRADER_FORCE_EVENT"`
	CORSOrigins string  `env:"CORS_ORIGINS"`
}

// Autopilot configures cmd/autopilot.
type Autopilot struct {
	ServerURL  string        `env:"AUTOPILOT_SERVER" envDefault:"http://localhost:8080"`
	Interval   time.Duration `env:"AUTOPILOT_INTERVAL" envDefault:"2s"`
	MaxBackoff time.Duration `env:"AUTOPILOT_MAX_BACKOFF" envDefault:"1m"`
	MinFuel    float64       `env:"AUTOPILOT_MIN_FUEL" envDefault:"0.4"`
	MinHull    float64       `env:"AUTOPILOT_MIN_HULL" envDefault:"0.5"`
	MemoryPath string        `env:"AUTOPILOT_MEMORY" envDefault:"autopilot_memory.json"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadServer reads the server configuration.
func LoadServer() (Server, error) {
	loadDotEnv()
	var c Server
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, c.Validate()
}

// LoadAutopilot reads the autopilot configuration.
func LoadAutopilot() (Autopilot, error) {
	loadDotEnv()
	var c Autopilot
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, c.Validate()
}

func loadDotEnv() {
	// A missing .env is normal.
	_ = godotenv.Load()
}

// Validate rejects settings the server cannot start with.
func (c Server) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db path is empty"))
	}
	if _, err := cron.ParseStandard(c.Autosave); err != nil {
		errs = append(errs, fmt.Errorf("autosave schedule %q: %w", c.Autosave, err))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate rejects settings the autopilot cannot run with.
func (c Autopilot) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server url is empty"))
	}
	if c.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}
	if c.MinFuel < 0 || c.MinFuel > 1 || c.MinHull < 0 || c.MinHull > 1 {
		errs = append(errs, errors.New("fuel and hull thresholds are fractions"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Origins splits CORSOrigins on commas.
func (c Server) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
