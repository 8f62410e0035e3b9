// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/voteserver/mailbox"
	"github.com/danielhkuo/voteserver/models"
)

type op int

const (
	opSubmit op = iota
	opClear
	opReport
)

type request struct {
	op     op
	ballot models.Ballot
	pollID string
	round  int
	reply  chan Report
}

// Report is a snapshot of one poll's tally
type Report struct {
	Tally   models.Tally
	Ballots int
}

// Aggregator owns the tally store. All mutations run on the goroutine that
// calls Run, one request at a time, in queue order.
type Aggregator struct {
	queue  *mailbox.Mailbox[request]
	logger *slog.Logger
	done   chan struct{}

	// owned by Run
	tallies map[string]models.Tally
	ballots map[string]int
	floors  map[string]int // ballots from rounds below this are stale
}

func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		queue:   mailbox.New[request](),
		logger:  logger,
		done:    make(chan struct{}),
		tallies: make(map[string]models.Tally),
		ballots: make(map[string]int),
		floors:  make(map[string]int),
	}
}

// Run processes requests until ctx is done
func (a *Aggregator) Run(ctx context.Context) error {
	defer close(a.done)

	for {
		req, err := a.queue.Pop(ctx)
		if err != nil {
			return err
		}

		switch req.op {
		case opSubmit:
			a.apply(req.ballot)
		case opClear:
			delete(a.tallies, req.pollID)
			delete(a.ballots, req.pollID)
			if req.round > a.floors[req.pollID] {
				a.floors[req.pollID] = req.round
			}
			req.reply <- Report{}
		case opReport:
			req.reply <- Report{
				Tally:   a.tallies[req.pollID].Clone(),
				Ballots: a.ballots[req.pollID],
			}
		}
	}
}

func (a *Aggregator) apply(b models.Ballot) {
	if b.Round < a.floors[b.PollID] {
		a.logger.Debug("dropping ballot from a cleared round",
			"poll", b.PollID,
			"round", b.Round,
			"current_round", a.floors[b.PollID],
		)
		return
	}

	tally := a.tallies[b.PollID]
	if tally == nil {
		tally = make(models.Tally)
		a.tallies[b.PollID] = tally
	}
	for _, key := range b.Keys() {
		tally[key]++
	}
	a.ballots[b.PollID]++
}

// Submit queues a ballot. It never blocks.
func (a *Aggregator) Submit(b models.Ballot) {
	a.queue.Push(request{op: opSubmit, ballot: b})
}

// Clear empties the poll's tally once every ballot queued before it has been
// applied, and drops later ballots cast in a round below round.
func (a *Aggregator) Clear(ctx context.Context, pollID string, round int) error {
	_, err := a.call(ctx, request{op: opClear, pollID: pollID, round: round})
	return err
}

// Report returns a copy of the poll's tally, reflecting every ballot
// submitted before the call
func (a *Aggregator) Report(ctx context.Context, pollID string) (Report, error) {
	return a.call(ctx, request{op: opReport, pollID: pollID})
}

func (a *Aggregator) call(ctx context.Context, req request) (Report, error) {
	req.reply = make(chan Report, 1)
	a.queue.Push(req)

	select {
	case rep := <-req.reply:
		return rep, nil
	case <-a.done:
		return Report{}, models.ErrStopped
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}
