// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared by the server packages.

# Polls and Ballots

  - PollKind: yes/no, single choice, multi choice or ranked
  - Choice: what a ballot says; one of Label, Selection or Ranking
  - Ballot: a Choice for one poll, stamped with the round it was cast in
  - Notice: a mailbox message, either a poll id or the shutdown notice

# Tallies

A Tally counts ballots per TallyKey. Label keys count single answers and
every label of a multi-choice selection; ranking keys count whole ranked
sequences:

	for _, key := range ballot.Keys() {
		tally[key]++
	}

# Results

ResultSnapshot is the computed outcome of one poll. Counted polls fill
Choices; ranked polls fill Ranked with placements, the tally of each
instant-runoff round and the number of abstentions. Snapshots are what
the archive stores, as JSON.

# Errors

Sentinel errors (ErrUnknownPoll, ErrPollAlreadyOpen, ...) are wrapped with
context and matched with errors.Is:

	if errors.Is(err, models.ErrUnknownPoll) {
		// ...
	}
*/
package models
