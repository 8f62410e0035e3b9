// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregator counts ballots.

The Aggregator is a single-writer worker: every request goes through one
unbounded queue and is applied by the goroutine running Run, so the tally
store needs no locks.

	agg := aggregator.New(logger)
	go agg.Run(ctx)

	agg.Submit(ballot)                 // never blocks
	rep, err := agg.Report(ctx, "chair") // snapshot copy

# Keys

A label ballot increments its label, a multiple-choice ballot increments
each selected label, and a ranked ballot increments its full ranking.

# Revote

Clear is queued behind any ballots already submitted, empties the poll and
raises the poll's round floor. Ballots stamped with an older round that
arrive later are dropped, so a revote starts from an empty tally even while
voters of the previous round are still typing.
*/
package aggregator
