// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	PollConfig    string
	DatabaseURL   string
	DatabaseType  string
	ShutdownGrace time.Duration
	LogLevel      string
	LogFormat     string
}

// LoadEnv reads .env style files into the process environment. Variables
// that are already set win. Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("voteserver", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.PollConfig, "c", "", "Poll configuration file")

	// Optional result archive
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for the result archive")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	fs.DurationVar(&cfg.ShutdownGrace, "grace", 0, "Time sessions get to finish on exit")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// A bare port number may follow the flags
	switch fs.NArg() {
	case 0:
	case 1:
		port, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return Config{}, fmt.Errorf("invalid port %q", fs.Arg(0))
		}
		cfg.Port = port
	default:
		return Config{}, errors.New("too many arguments")
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.PollConfig == "" {
		cfg.PollConfig = os.Getenv("POLL_CONFIG")
		if cfg.PollConfig == "" {
			cfg.PollConfig = "vote.yaml"
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.ShutdownGrace == 0 {
		if graceStr := os.Getenv("SHUTDOWN_GRACE"); graceStr != "" {
			grace, err := time.ParseDuration(graceStr)
			if err != nil {
				return Config{}, errors.New("invalid SHUTDOWN_GRACE env variable")
			}
			cfg.ShutdownGrace = grace
		} else {
			cfg.ShutdownGrace = 10 * time.Second
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}

	return cfg, nil
}
