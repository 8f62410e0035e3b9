// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
)

// CountVotes turns a label tally into per-choice counts and percentages.
//
// Percentages are relative to all non-abstaining votes; ABSTAIN is always
// reported as 0%. With no non-abstaining votes every choice reports 0%.
// Listed options without votes are included with a zero count.
func CountVotes(tally models.Tally, options []string) []models.ChoiceStats {
	counts := make(map[string]int, len(tally)+len(options))
	for _, opt := range options {
		counts[opt] = 0
	}
	for key, votes := range tally {
		counts[key.String()] += votes
	}

	total := 0
	for choice, votes := range counts {
		if choice != models.Abstain {
			total += votes
		}
	}

	stats := make([]models.ChoiceStats, 0, len(counts))
	for choice, votes := range counts {
		stat := models.ChoiceStats{Choice: choice, Votes: votes}
		if choice != models.Abstain && total > 0 {
			stat.Percent = 100 * float64(votes) / float64(total)
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]

		// 1. ABSTAIN goes last
		if (a.Choice == models.Abstain) != (b.Choice == models.Abstain) {
			return b.Choice == models.Abstain
		}

		// 2. More votes first
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}

		// 3. Stable tie-breaking by label
		return a.Choice < b.Choice
	})

	return stats
}

// Compute builds the result snapshot of one poll from its tally
func Compute(def polls.Definition, tally models.Tally, ballots int, now time.Time) models.ResultSnapshot {
	snapshot := models.ResultSnapshot{
		ID:          uuid.NewString(),
		PollID:      def.Name,
		ComputedAt:  now,
		BallotCount: ballots,
	}

	switch def.Kind {
	case models.KindRanked:
		ranked := TabulateRanked(tally)
		snapshot.Method = models.MethodIRV
		snapshot.Ranked = &ranked
	case models.KindYesNo:
		snapshot.Method = models.MethodCount
		snapshot.Choices = CountVotes(tally, []string{models.Yes, models.No})
	default:
		snapshot.Method = models.MethodCount
		snapshot.Choices = CountVotes(tally, def.Options)
	}

	return snapshot
}
