// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides command middleware and output helpers for the
operator console.

# Command Logging

Wrap handlers with command logging:

	mux.HandleFunc("who", "list sessions", middleware.WithLogging(handler))

Logs command start (command, args) and completion (duration_ms).

# Output Helpers

Report a failed command as a single line:

	middleware.ErrorResponse(w, r, err) // "kick: session id unknown: 7"

Align columns:

	tw := middleware.Table(w)
	fmt.Fprintf(tw, "%d\t%s\n", id, name)
	tw.Flush()

Dump a value as JSON:

	middleware.JSONResponse(w, snapshot)

# Arguments

Parse integer arguments:

	id, err := middleware.IntArg(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
*/
package middleware
