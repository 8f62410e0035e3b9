// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the operator console command handlers.

# Handler Types

Each handler is a struct with controller and config dependencies:

  - PollHandler: Poll lifecycle (vote, close, revote, list) and options
  - SessionHandler: Connected sessions (who, kick) and exit
  - ResultsHandler: Results and the result archive

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(ctl, cfg)

Every handler writes its output to the console and reports failures as a
single line through middleware.ErrorResponse:

	vote: unknown poll 'nope'

# Poll Lifecycle

	vote <poll>   → Vote (opens the poll, pushes it to every session)
	close <poll>  → Close
	revote <poll> → Revote (closes, clears the tally, opens a new round)

Ballots cast in a round before a revote are discarded even when they
arrive afterwards.

# Kicking

Kick tells the session to finish and waits up to the shutdown grace. A
session still sitting at a ballot prompt after that has its connection
dropped.

# Results

Yes/no and choice polls print counts and percentages of the non-abstaining
votes. Ranked polls print instant-runoff placements (1st, 2nd, ...) followed
by the tally of each round. With a database configured every results
command archives a snapshot that history lists.
*/
package handlers
