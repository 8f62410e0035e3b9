// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv reads a .env file if present, then ParseFlags returns a Config
struct with all settings:

	cliparse.LoadEnv()
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Participant listen port (default: 3318)
  - PollConfig: Poll YAML file (default: vote.yaml)
  - DatabaseURL: Result archive connection string (optional)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ShutdownGrace: Time sessions get to finish on exit (default: 10s)
  - LogLevel, LogFormat: slog level and handler (text or json)

# CLI Flags

	-p            Server port
	-c            Poll configuration file
	-d            Database URL
	-t            Database type
	-grace        Shutdown grace period
	-log-level    Log level
	-log-format   Log format

A bare port number is also accepted after the flags:

	voteserver -c meeting.yaml 4000

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	POLL_CONFIG    → -c
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	SHUTDOWN_GRACE → -grace
	LOG_LEVEL      → -log-level
	LOG_FORMAT     → -log-format

CLI flags take precedence over environment variables, which take
precedence over .env.

# Logging

NewLogger builds the slog handler from LogLevel and LogFormat. Without a
format it writes text to a terminal and JSON otherwise.
*/
package cliparse
