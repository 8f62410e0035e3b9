// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package control

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/voteserver/aggregator"
	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/registrar"
	"github.com/danielhkuo/voteserver/testutil"
)

func setupController(t *testing.T) (*Controller, *aggregator.Aggregator) {
	t.Helper()

	registry := testutil.NewTestRegistry()
	reg := registrar.New(registry, nil)
	agg := aggregator.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)
	go func() { reg.Run(ctx); done <- struct{}{} }()
	go func() { agg.Run(ctx); done <- struct{}{} }()
	t.Cleanup(func() {
		cancel()
		<-done
		<-done
	})

	return New(registry, reg, agg, nil), agg
}

func TestOpenAndClose(t *testing.T) {
	ctl, _ := setupController(t)
	ctx := context.Background()

	round, err := ctl.Open(ctx, "budget")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if round != 1 {
		t.Errorf("Expected round 1, got %d", round)
	}
	if _, err := ctl.Open(ctx, "budget"); !errors.Is(err, models.ErrPollAlreadyOpen) {
		t.Errorf("Expected ErrPollAlreadyOpen, got %v", err)
	}

	if err := ctl.Close("budget"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := ctl.Close("budget"); !errors.Is(err, models.ErrPollNotOpen) {
		t.Errorf("Expected ErrPollNotOpen, got %v", err)
	}
	if err := ctl.Close("nope"); !errors.Is(err, models.ErrUnknownPoll) {
		t.Errorf("Expected ErrUnknownPoll, got %v", err)
	}
}

func TestRevoteDiscardsPreviousRound(t *testing.T) {
	ctl, agg := setupController(t)
	ctx := context.Background()

	round, _ := ctl.Open(ctx, "budget")
	agg.Submit(models.Ballot{PollID: "budget", Round: round, Choice: models.Label(models.Yes)})
	agg.Submit(models.Ballot{PollID: "budget", Round: round, Choice: models.Label(models.Yes)})

	next, err := ctl.Revote(ctx, "budget")
	if err != nil {
		t.Fatalf("Revote failed: %v", err)
	}
	if next != round+1 {
		t.Errorf("Expected round %d, got %d", round+1, next)
	}

	// A session that was still answering the old round submits late
	agg.Submit(models.Ballot{PollID: "budget", Round: round, Choice: models.Label(models.Yes)})
	agg.Submit(models.Ballot{PollID: "budget", Round: next, Choice: models.Label(models.No)})

	snap, err := ctl.Results(ctx, "budget")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if snap.BallotCount != 1 {
		t.Errorf("Expected 1 ballot after revote, got %d", snap.BallotCount)
	}
	for _, cs := range snap.Choices {
		if cs.Choice == models.Yes && cs.Votes != 0 {
			t.Errorf("Expected stale YES votes to be dropped, got %d", cs.Votes)
		}
		if cs.Choice == models.No && cs.Votes != 1 {
			t.Errorf("Expected 1 NO vote, got %d", cs.Votes)
		}
	}
}

func TestRevoteReportsPollLeftClosed(t *testing.T) {
	registry := testutil.NewTestRegistry()
	reg := registrar.New(registry, nil)
	agg := aggregator.New(nil)

	aggCtx, stopAgg := context.WithCancel(context.Background())
	aggDone := make(chan struct{})
	go func() { agg.Run(aggCtx); close(aggDone) }()
	t.Cleanup(func() {
		stopAgg()
		<-aggDone
	})

	regCtx, stopReg := context.WithCancel(context.Background())
	regDone := make(chan struct{})
	go func() { reg.Run(regCtx); close(regDone) }()

	ctl := New(registry, reg, agg, nil)
	ctx := context.Background()
	round, err := ctl.Open(ctx, "budget")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	agg.Submit(models.Ballot{PollID: "budget", Round: round, Choice: models.Label(models.Yes)})

	// The registrar stops between clearing the tally and reopening
	stopReg()
	<-regDone

	_, err = ctl.Revote(ctx, "budget")
	if !errors.Is(err, models.ErrStopped) {
		t.Fatalf("Expected ErrStopped, got %v", err)
	}
	if !strings.Contains(err.Error(), "left closed") {
		t.Errorf("Expected the error to say the poll is left closed, got %q", err)
	}
	if _, open := registry.Round("budget"); open {
		t.Error("Expected budget to be closed")
	}

	rep, err := agg.Report(ctx, "budget")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if rep.Ballots != 0 {
		t.Errorf("Expected a cleared tally, got %d ballots", rep.Ballots)
	}
}

func TestRevoteClosedPoll(t *testing.T) {
	ctl, _ := setupController(t)
	ctx := context.Background()

	ctl.Open(ctx, "color")
	ctl.Close("color")

	round, err := ctl.Revote(ctx, "color")
	if err != nil {
		t.Fatalf("Revote failed: %v", err)
	}
	if round != 2 {
		t.Errorf("Expected round 2, got %d", round)
	}

	if _, err := ctl.Revote(ctx, "nope"); !errors.Is(err, models.ErrUnknownPoll) {
		t.Errorf("Expected ErrUnknownPoll, got %v", err)
	}
}

func TestOptionsAndRemove(t *testing.T) {
	ctl, _ := setupController(t)

	if _, err := ctl.Options("budget"); !errors.Is(err, models.ErrNoOptions) {
		t.Errorf("Expected ErrNoOptions for a yes/no poll, got %v", err)
	}

	label, err := ctl.RemoveOption("color", 2)
	if err != nil {
		t.Fatalf("RemoveOption failed: %v", err)
	}
	if label != "Blue" {
		t.Errorf("Expected Blue removed, got %q", label)
	}

	opts, _ := ctl.Options("color")
	if len(opts) != 2 || opts[0] != "Red" || opts[1] != "Green" {
		t.Errorf("Expected [Red Green], got %v", opts)
	}

	if _, err := ctl.RemoveOption("color", 3); !errors.Is(err, models.ErrOptionOutOfRange) {
		t.Errorf("Expected ErrOptionOutOfRange, got %v", err)
	}
}

func TestListKeepsFileOrder(t *testing.T) {
	ctl, _ := setupController(t)
	ctl.Open(context.Background(), "snacks")

	list := ctl.List()
	want := []string{"budget", "color", "snacks", "chair"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d polls, got %d", len(want), len(list))
	}
	for i, st := range list {
		if st.Definition.Name != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], st.Definition.Name)
		}
		if st.Open != (st.Definition.Name == "snacks") {
			t.Errorf("Unexpected open state for %s: %v", st.Definition.Name, st.Open)
		}
	}
}

func TestRankedResults(t *testing.T) {
	ctl, agg := setupController(t)
	ctx := context.Background()

	round, _ := ctl.Open(ctx, "chair")
	for _, r := range []models.Ranking{{"A", "B"}, {"B"}, {"B", "A"}, {"C", "A"}} {
		agg.Submit(models.Ballot{PollID: "chair", Round: round, Choice: r})
	}

	snap, err := ctl.Results(ctx, "chair")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if snap.Method != models.MethodIRV {
		t.Errorf("Expected method %s, got %s", models.MethodIRV, snap.Method)
	}
	if snap.Ranked == nil || len(snap.Ranked.Placements) == 0 {
		t.Fatal("Expected ranked placements")
	}
	if got := snap.Ranked.Placements[0].Candidates; len(got) != 1 || got[0] != "B" {
		t.Errorf("Expected B to win, got %v", got)
	}
}
