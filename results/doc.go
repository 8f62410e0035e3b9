// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results computes poll outcomes from tallies.

# Ranked Polls

TabulateRanked implements instant-runoff voting with simultaneous
elimination of tied losers:

 1. Each distinct first choice starts as an active candidate.
 2. Each round removes every candidate at the lowest first-place tally.
 3. Their ballots move to the next preference still active; ballots with
    none left are exhausted.
 4. The elimination order, reversed, is the ranking.

Candidates eliminated in the same round share a placement. Write-ins are
candidates like any other option. The result does not depend on map
iteration order.

# Other Polls

CountVotes reports counts and percentages of non-abstaining votes:

	percent = 100 * votes / (total - abstentions)

ABSTAIN is always 0%, and an all-abstain (or empty) poll reports 0% for
every choice.

# Snapshots

Compute picks the method from the poll kind and stamps the snapshot with a
fresh UUID for archiving.
*/
package results
