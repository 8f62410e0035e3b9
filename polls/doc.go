// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls holds poll definitions and the set of currently open polls.

# Configuration

Polls are loaded from YAML:

	banner: |
	  == Club elections ==
	welcome_msg: Welcome to the annual meeting.
	polls:
	  budget:
	    question: Approve the budget?
	    yesno: true
	  chair:
	    title: Chair
	    options: [Alice, Bob, Carol]
	    ranked: true
	    writein: true

The kind is derived from the flags: yesno, then ranked, then multichoice,
otherwise single choice. Polls keep the order of the file.

# Open Set

Open and Close maintain the open set in insertion order. Every Open starts a
new round; ballots carry the round they were cast in.
*/
package polls
