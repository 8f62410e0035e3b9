// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session runs the line protocol spoken with one participant.

# Protocol

A session asks for a display name, registers with the directory and then
waits on its mailbox. Every poll notice that is still open when it is taken
off the mailbox is shown and answered; the shutdown notice ends the session:

	sess := session.New(conn, session.Env{
		Polls:      registry,
		Registrar:  reg,
		Aggregator: agg,
		Banner:     cfg.Banner,
	})
	err := sess.Run(ctx)

Each redraw starts with ESC[2J ESC[H followed by the banner.

# Ballots

ParseBallot checks one line against the poll's grammar. Rejected lines only
cause the prompt to be shown again; the reason is logged at debug level.
*/
package session
