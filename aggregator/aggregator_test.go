// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/danielhkuo/voteserver/models"
)

func startAggregator(t *testing.T) *Aggregator {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	agg := New(nil)
	done := make(chan struct{})
	go func() {
		agg.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return agg
}

func TestSubmitAndReport(t *testing.T) {
	agg := startAggregator(t)
	ctx := context.Background()

	agg.Submit(models.Ballot{PollID: "budget", Choice: models.Label(models.Yes)})
	agg.Submit(models.Ballot{PollID: "budget", Choice: models.Label(models.Yes)})
	agg.Submit(models.Ballot{PollID: "budget", Choice: models.Label(models.No)})
	agg.Submit(models.Ballot{PollID: "other", Choice: models.Label(models.Abstain)})

	rep, err := agg.Report(ctx, "budget")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if rep.Tally[models.LabelKey(models.Yes)] != 2 {
		t.Errorf("Expected 2 YES, got %d", rep.Tally[models.LabelKey(models.Yes)])
	}
	if rep.Tally[models.LabelKey(models.No)] != 1 {
		t.Errorf("Expected 1 NO, got %d", rep.Tally[models.LabelKey(models.No)])
	}
	if rep.Ballots != 3 {
		t.Errorf("Expected 3 ballots, got %d", rep.Ballots)
	}
	if _, leaked := rep.Tally[models.LabelKey(models.Abstain)]; leaked {
		t.Error("Tally of another poll leaked into the report")
	}
}

func TestMultiChoiceFanOut(t *testing.T) {
	agg := startAggregator(t)

	agg.Submit(models.Ballot{PollID: "snacks", Choice: models.NewSelection("Chips", "Fruit", "Chips")})
	agg.Submit(models.Ballot{PollID: "snacks", Choice: models.NewSelection("Fruit")})

	rep, err := agg.Report(context.Background(), "snacks")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if rep.Tally[models.LabelKey("Chips")] != 1 || rep.Tally[models.LabelKey("Fruit")] != 2 {
		t.Errorf("Unexpected tally %v", rep.Tally)
	}
	// one increment per selected option
	if rep.Tally.Total() != 3 {
		t.Errorf("Expected total 3, got %d", rep.Tally.Total())
	}
	if rep.Ballots != 2 {
		t.Errorf("Expected 2 ballots, got %d", rep.Ballots)
	}
}

func TestRankedKeys(t *testing.T) {
	agg := startAggregator(t)

	agg.Submit(models.Ballot{PollID: "chair", Choice: models.Ranking{"A", "B"}})
	agg.Submit(models.Ballot{PollID: "chair", Choice: models.Ranking{"A", "B"}})
	agg.Submit(models.Ballot{PollID: "chair", Choice: models.Ranking{"B", "A"}})

	rep, _ := agg.Report(context.Background(), "chair")
	if rep.Tally[models.RankingKey([]string{"A", "B"})] != 2 {
		t.Errorf("Expected 2 for A > B, got %v", rep.Tally)
	}
	if rep.Tally[models.RankingKey([]string{"B", "A"})] != 1 {
		t.Errorf("Expected 1 for B > A, got %v", rep.Tally)
	}
}

func TestReportIsSnapshot(t *testing.T) {
	agg := startAggregator(t)
	ctx := context.Background()

	agg.Submit(models.Ballot{PollID: "p", Choice: models.Label("x")})
	rep, _ := agg.Report(ctx, "p")

	rep.Tally[models.LabelKey("x")] = 100
	agg.Submit(models.Ballot{PollID: "p", Choice: models.Label("x")})

	again, _ := agg.Report(ctx, "p")
	if again.Tally[models.LabelKey("x")] != 2 {
		t.Errorf("Expected 2, got %d", again.Tally[models.LabelKey("x")])
	}
	if rep.Tally[models.LabelKey("x")] != 100 {
		t.Error("Earlier snapshot should not be live-linked")
	}
}

func TestClearDropsStaleRounds(t *testing.T) {
	agg := startAggregator(t)
	ctx := context.Background()

	agg.Submit(models.Ballot{PollID: "p", Round: 1, Choice: models.Label("x")})
	agg.Submit(models.Ballot{PollID: "p", Round: 1, Choice: models.Label("y")})

	if err := agg.Clear(ctx, "p", 2); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	rep, _ := agg.Report(ctx, "p")
	if len(rep.Tally) != 0 || rep.Ballots != 0 {
		t.Fatalf("Expected empty tally after clear, got %v (%d ballots)", rep.Tally, rep.Ballots)
	}

	// A ballot from the previous round arriving late is ignored
	agg.Submit(models.Ballot{PollID: "p", Round: 1, Choice: models.Label("x")})
	agg.Submit(models.Ballot{PollID: "p", Round: 2, Choice: models.Label("y")})

	rep, _ = agg.Report(ctx, "p")
	if rep.Tally[models.LabelKey("x")] != 0 {
		t.Error("Stale ballot was counted after clear")
	}
	if rep.Tally[models.LabelKey("y")] != 1 || rep.Ballots != 1 {
		t.Errorf("Expected one current ballot, got %v", rep.Tally)
	}
}

func TestSumMatchesBallotsConcurrently(t *testing.T) {
	agg := startAggregator(t)

	const voters, perVoter = 20, 50
	var wg sync.WaitGroup
	for v := 0; v < voters; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			for i := 0; i < perVoter; i++ {
				agg.Submit(models.Ballot{PollID: "p", Choice: models.Label([]string{"a", "b", "c"}[(v+i)%3])})
			}
		}(v)
	}
	wg.Wait()

	rep, err := agg.Report(context.Background(), "p")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if rep.Tally.Total() != voters*perVoter {
		t.Errorf("Expected %d votes, got %d", voters*perVoter, rep.Tally.Total())
	}
	if rep.Ballots != voters*perVoter {
		t.Errorf("Expected %d ballots, got %d", voters*perVoter, rep.Ballots)
	}
}

func TestCallAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agg := New(nil)
	done := make(chan struct{})
	go func() {
		agg.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if _, err := agg.Report(context.Background(), "p"); !errors.Is(err, models.ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}
}
