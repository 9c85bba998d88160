// Package config loads server settings from RESULTBOARD_* environment
// variables, then lets command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds server settings
type Config struct {
	APIHost           string   `env:"RESULTBOARD_API_HOST" envDefault:"localhost"`
	APIPort           int      `env:"RESULTBOARD_API_PORT" envDefault:"8080"`
	StoragePath       string   `env:"RESULTBOARD_STORAGE_PATH" envDefault:"resultboard.db"`
	Dev               bool     `env:"RESULTBOARD_DEV" envDefault:"false"`
	JWTSecret         string   `env:"RESULTBOARD_JWT_SECRET"`
	LogLevel          string   `env:"RESULTBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat         string   `env:"RESULTBOARD_LOG_FORMAT" envDefault:"text"`
	HomeOffsetMinutes int      `env:"RESULTBOARD_HOME_UTC_OFFSET_MINUTES" envDefault:"330"`
	CORSOrigins       []string `env:"RESULTBOARD_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimit         int      `env:"RESULTBOARD_RATE_LIMIT" envDefault:"20"`
	PIDPath           string   `env:"RESULTBOARD_PID_PATH"`
	PIDLock           bool     `env:"RESULTBOARD_PID_LOCK" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, then applies flags from args
func Load(args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("resultboard-server", flag.ContinueOnError)
	fs.StringVar(&cfg.APIHost, "api-host", cfg.APIHost, "API server host")
	fs.IntVar(&cfg.APIPort, "api-port", cfg.APIPort, "API server port")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "Path to SQLite database file")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "Development mode (relaxed rate limits, fixed JWT secret)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.IntVar(&cfg.HomeOffsetMinutes, "home-offset", cfg.HomeOffsetMinutes, "UTC offset in minutes for the home view's today")
	fs.StringVar(&cfg.PIDPath, "pid", cfg.PIDPath, "Optional path to write PID file")
	fs.BoolVar(&cfg.PIDLock, "pid-lock", cfg.PIDLock, "Lock PID file to allow only one instance (requires -pid)")
	origins := fs.String("cors-origins", strings.Join(cfg.CORSOrigins, ","), "Comma-separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.CORSOrigins = splitList(*origins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	if c.PIDLock && c.PIDPath == "" {
		return errors.New("-pid-lock flag requires the -pid flag to be set")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid api port %d", c.APIPort)
	}
	if c.StoragePath == "" {
		return errors.New("storage path is required")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if c.HomeOffsetMinutes < -14*60 || c.HomeOffsetMinutes > 14*60 {
		return fmt.Errorf("home offset %d minutes out of range", c.HomeOffsetMinutes)
	}
	return nil
}

// Addr returns host:port of the API server
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
