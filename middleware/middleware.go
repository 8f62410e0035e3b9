// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/danielhkuo/voteserver/console"
)

// WithLogging wraps a command handler with logging
func WithLogging(next console.HandlerFunc) console.HandlerFunc {
	return func(w io.Writer, r *console.Request) {
		start := time.Now()

		slog.Info("command started",
			"command", r.Command,
			"args", r.Args,
		)

		next(w, r)

		duration := time.Since(start)
		slog.Info("command completed",
			"command", r.Command,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// ErrorResponse writes the single line an operator sees when a command fails
func ErrorResponse(w io.Writer, r *console.Request, err error) {
	fmt.Fprintf(w, "%s: %v\n", r.Command, err)
}

// JSONResponse writes v as indented JSON
func JSONResponse(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// Table returns a writer that aligns tab separated columns. Call Flush when
// done.
func Table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// IntArg parses the named argument as an integer
func IntArg(r *console.Request, name string) (int, error) {
	v := r.Arg(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, v)
	}
	return n, nil
}
