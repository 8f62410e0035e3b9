// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/danielhkuo/voteserver/models"
)

// remainder is a group of identical ballots minus the preferences already used
type remainder struct {
	count int
	seq   []string
}

type candidate struct {
	votes      int
	remainders []remainder
}

// TabulateRanked runs an instant-runoff count over a ranked tally.
//
// Every round eliminates all candidates sharing the lowest first-place
// tally and hands their ballots to the next preference that is still in the
// race. Ballots with no such preference are exhausted. Elimination order,
// reversed, is the final ranking; candidates eliminated together share a
// placement. ABSTAIN-only ballots are counted as abstentions.
func TabulateRanked(tally models.Tally) models.RankedResult {
	var result models.RankedResult

	candidates := make(map[string]*candidate)
	for key, count := range tally {
		seq := key.Ranking()
		if !key.IsRanking() {
			seq = []string{key.Label()}
		}
		if count <= 0 || len(seq) == 0 {
			continue
		}
		if len(seq) == 1 && seq[0] == models.Abstain {
			result.Abstentions += count
			continue
		}

		c := candidates[seq[0]]
		if c == nil {
			c = &candidate{}
			candidates[seq[0]] = c
		}
		c.votes += count
		c.remainders = append(c.remainders, remainder{count: count, seq: seq[1:]})
	}

	active := mapset.NewThreadUnsafeSet[string]()
	for name := range candidates {
		active.Add(name)
	}

	type group struct {
		names []string
		votes int
	}
	var eliminated []group

	for round := 1; active.Cardinality() > 0; round++ {
		names := active.ToSlice()

		rt := models.RoundTally{Round: round, Tallies: make(map[string]int, len(names))}
		lowest := -1
		for _, name := range names {
			votes := candidates[name].votes
			rt.Tallies[name] = votes
			if lowest < 0 || votes < lowest {
				lowest = votes
			}
		}

		// Everyone at the minimum goes out together
		var losers []string
		for _, name := range names {
			if candidates[name].votes == lowest {
				losers = append(losers, name)
			}
		}
		sort.Strings(losers)
		for _, name := range losers {
			active.Remove(name)
		}

		// Nothing left to transfer to after the final round
		for _, name := range losers {
			if active.Cardinality() == 0 {
				break
			}
			for _, rem := range candidates[name].remainders {
				if !transfer(candidates, active, rem) {
					rt.Exhausted += rem.count
				}
			}
		}

		rt.Eliminated = losers
		result.Rounds = append(result.Rounds, rt)
		eliminated = append(eliminated, group{names: losers, votes: lowest})
	}

	for i := len(eliminated) - 1; i >= 0; i-- {
		result.Placements = append(result.Placements, models.Placement{
			Rank:       len(result.Placements) + 1,
			Candidates: eliminated[i].names,
			Votes:      eliminated[i].votes,
		})
	}

	return result
}

// transfer moves a ballot group to its next preference still in the race.
// Reports false when the ballots are exhausted.
func transfer(candidates map[string]*candidate, active mapset.Set[string], rem remainder) bool {
	for i, name := range rem.seq {
		if !active.Contains(name) {
			continue
		}
		c := candidates[name]
		c.votes += rem.count
		c.remainders = append(c.remainders, remainder{count: rem.count, seq: rem.seq[i+1:]})
		return true
	}
	return false
}
