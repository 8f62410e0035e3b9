// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package console reads operator commands and routes them to handlers.

# Routing

Commands are registered on a Mux with a pattern naming their arguments:

	mux := console.NewMux()
	mux.HandleFunc("kick {id}", "end one session", sessionHandler.Kick)

	func (h *SessionHandler) Kick(w io.Writer, r *console.Request) {
		id := r.Arg("id")
		// ...
	}

A line whose first word is not registered, or whose argument count does not
match the pattern, prints a usage line instead.

# Loop

Run reads lines until EOF or until its context is cancelled, which is how
the exit command and SIGINT stop it:

	err := console.Run(ctx, os.Stdin, os.Stdout, mux, console.IsTerminal(os.Stdin))
*/
package console
