// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// PollKind selects the ballot grammar and the tabulation method of a poll
type PollKind int

const (
	KindYesNo PollKind = iota
	KindSingleChoice
	KindMultiChoice
	KindRanked
)

func (k PollKind) String() string {
	switch k {
	case KindYesNo:
		return "yesno"
	case KindSingleChoice:
		return "single"
	case KindMultiChoice:
		return "multichoice"
	case KindRanked:
		return "ranked"
	default:
		return "unknown"
	}
}

// Ballot words
const (
	Yes     = "YES"
	No      = "NO"
	Abstain = "ABSTAIN"
)

// Result method constants
const (
	MethodCount = "count"
	MethodIRV   = "irv"
)

// Notice is one mailbox entry: either a poll-open notice or the shutdown signal
type Notice struct {
	PollID   string
	Shutdown bool
}

// ShutdownNotice asks a session to finish
var ShutdownNotice = Notice{Shutdown: true}

func PollNotice(pollID string) Notice {
	return Notice{PollID: pollID}
}

// Choice payloads

// Choice is the payload of a ballot. It is one of Label, Selection or Ranking.
type Choice interface {
	isChoice()
	String() string
}

// Label is a single answer: YES/NO/ABSTAIN, an option label or a write-in
type Label string

// Selection is an unordered set of answers (multiple choice)
type Selection struct {
	Labels mapset.Set[string]
}

// Ranking is an ordered list of distinct answers, most preferred first
type Ranking []string

func (Label) isChoice()     {}
func (Selection) isChoice() {}
func (Ranking) isChoice()   {}

func (l Label) String() string { return string(l) }

func (s Selection) String() string {
	return strings.Join(s.Sorted(), ", ")
}

// Sorted returns the selected labels in ascending order
func (s Selection) Sorted() []string {
	if s.Labels == nil {
		return nil
	}
	labels := s.Labels.ToSlice()
	sort.Strings(labels)
	return labels
}

func (r Ranking) String() string {
	return strings.Join(r, " > ")
}

// NewSelection builds a Selection; duplicate labels collapse
func NewSelection(labels ...string) Selection {
	return Selection{Labels: mapset.NewThreadUnsafeSet(labels...)}
}

// Ballot is one participant's answer to one poll. It carries no identity.
type Ballot struct {
	PollID string
	Round  int
	Choice Choice
}

// Keys returns the tally keys the ballot increments.
// A selection increments one key per selected label.
func (b Ballot) Keys() []TallyKey {
	switch c := b.Choice.(type) {
	case Label:
		return []TallyKey{LabelKey(string(c))}
	case Selection:
		labels := c.Sorted()
		keys := make([]TallyKey, len(labels))
		for i, l := range labels {
			keys[i] = LabelKey(l)
		}
		return keys
	case Ranking:
		return []TallyKey{RankingKey(c)}
	default:
		return nil
	}
}

// Tally keys

// TallyKey identifies one counted choice: a single label or a full ranking
type TallyKey struct {
	value  string
	ranked bool
}

func LabelKey(label string) TallyKey {
	return TallyKey{value: label}
}

// RankingKey encodes the sequence as a JSON array so that any label,
// separators included, decodes back to the same entries
func RankingKey(seq []string) TallyKey {
	if len(seq) == 0 {
		return TallyKey{ranked: true}
	}
	// a string slice always marshals
	b, _ := json.Marshal(seq)
	return TallyKey{value: string(b), ranked: true}
}

func (k TallyKey) IsRanking() bool { return k.ranked }

// Label returns the label of a label key
func (k TallyKey) Label() string {
	if k.ranked {
		return ""
	}
	return k.value
}

// Ranking returns the sequence of a ranking key
func (k TallyKey) Ranking() []string {
	if !k.ranked || k.value == "" {
		return nil
	}
	var seq []string
	if err := json.Unmarshal([]byte(k.value), &seq); err != nil {
		return nil
	}
	return seq
}

func (k TallyKey) String() string {
	if k.ranked {
		return strings.Join(k.Ranking(), " > ")
	}
	return k.value
}

// Tally maps a choice to its vote count for one poll
type Tally map[TallyKey]int

// Clone returns an independent copy
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Total is the sum of all counts
func (t Tally) Total() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// Result types

type ChoiceStats struct {
	Choice  string  `json:"choice"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}

// Placement is one rank of a ranked-choice result; tied candidates share it
type Placement struct {
	Rank       int      `json:"rank"` // 1-indexed, dense
	Candidates []string `json:"candidates"`
	Votes      int      `json:"votes"` // first-place tally when eliminated
}

// RoundTally records the first-place tallies of one instant-runoff round
type RoundTally struct {
	Round      int            `json:"round"`
	Tallies    map[string]int `json:"tallies"`
	Eliminated []string       `json:"eliminated"`
	Exhausted  int            `json:"exhausted"`
}

type RankedResult struct {
	Placements  []Placement  `json:"placements"`
	Rounds      []RoundTally `json:"rounds"`
	Abstentions int          `json:"abstentions"`
}

type ResultSnapshot struct {
	ID          string        `json:"id"`
	PollID      string        `json:"poll_id"`
	Method      string        `json:"method"`
	ComputedAt  time.Time     `json:"computed_at"`
	BallotCount int           `json:"ballot_count"`
	Choices     []ChoiceStats `json:"choices,omitempty"`
	Ranked      *RankedResult `json:"ranked,omitempty"`
}

// SessionInfo is the read-only view of a registered session
type SessionInfo struct {
	ID         int
	Name       string
	RemoteAddr string
	JoinedAt   time.Time
}
