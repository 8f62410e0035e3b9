// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the operator console commands.

# Command Registration

NewRouter creates a configured console.Mux with all commands:

	mux := router.NewRouter(ctl, db, srv, cfg, stop)

# Commands

Sessions:

	exit          - End every session and stop the server
	kick <id>     - End one session
	who           - List connected sessions

Poll lifecycle:

	vote <poll>   - Open a poll on every session
	close <poll>  - Stop offering a poll
	list          - List configured polls
	revote <poll> - Discard all ballots and open the poll again

Options:

	options <poll>        - List a poll's options
	rmopt <poll> <index>  - Remove an option (1-based)

Results:

	results <poll> - Show current results, archiving them if a database is set
	history <poll> - List archived results

	help           - Show the command list

All commands except help are wrapped with middleware.WithLogging.
*/
package router
