// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/voteserver/aggregator"
	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
	"github.com/danielhkuo/voteserver/registrar"
	"github.com/danielhkuo/voteserver/results"
)

// PollStatus is one line of the poll listing
type PollStatus struct {
	Definition polls.Definition
	Open       bool
	Round      int
}

// Controller carries out operator commands against the running workers
type Controller struct {
	polls  *polls.Registry
	reg    *registrar.Registrar
	agg    *aggregator.Aggregator
	logger *slog.Logger
	now    func() time.Time
}

func New(registry *polls.Registry, reg *registrar.Registrar, agg *aggregator.Aggregator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		polls:  registry,
		reg:    reg,
		agg:    agg,
		logger: logger,
		now:    time.Now,
	}
}

// Open opens a poll and broadcasts it to every session
func (c *Controller) Open(ctx context.Context, name string) (int, error) {
	return c.reg.OpenPoll(ctx, name)
}

// Close stops showing the poll to sessions that have not reached it yet.
// Sessions already voting on it finish normally.
func (c *Controller) Close(name string) error {
	if err := c.polls.Close(name); err != nil {
		return err
	}
	c.logger.Info("poll closed", "poll", name)
	return nil
}

// Revote discards every ballot cast so far and opens the poll again.
// Ballots still in flight from the previous round are ignored.
func (c *Controller) Revote(ctx context.Context, name string) (int, error) {
	round, open := c.polls.Round(name)
	if _, ok := c.polls.Lookup(name); !ok {
		return 0, fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}

	if open {
		if err := c.polls.Close(name); err != nil {
			return 0, err
		}
	}
	if err := c.agg.Clear(ctx, name, round+1); err != nil {
		return 0, fmt.Errorf("failed to clear tally: %w", err)
	}

	next, err := c.reg.OpenPoll(ctx, name)
	if err != nil {
		c.logger.Warn("revote left poll closed", "poll", name, "error", err)
		return 0, fmt.Errorf("tally of '%s' cleared but poll left closed, run vote to open it: %w", name, err)
	}
	c.logger.Info("poll reopened for revote", "poll", name, "round", next)
	return next, nil
}

// RemoveOption deletes the 1-based option index from the poll
func (c *Controller) RemoveOption(name string, index int) (string, error) {
	label, err := c.polls.RemoveOption(name, index)
	if err != nil {
		return "", err
	}
	c.logger.Info("option removed", "poll", name, "option", label)
	return label, nil
}

// Options returns the poll's current options
func (c *Controller) Options(name string) ([]string, error) {
	def, ok := c.polls.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}
	if !def.HasOptions() {
		return nil, fmt.Errorf("%w '%s'", models.ErrNoOptions, name)
	}
	return def.Options, nil
}

// List returns every configured poll in file order
func (c *Controller) List() []PollStatus {
	names := c.polls.Names()
	out := make([]PollStatus, 0, len(names))
	for _, name := range names {
		def, _ := c.polls.Lookup(name)
		round, open := c.polls.Round(name)
		out = append(out, PollStatus{Definition: def, Open: open, Round: round})
	}
	return out
}

// Results tabulates the poll's current tally
func (c *Controller) Results(ctx context.Context, name string) (models.ResultSnapshot, error) {
	def, ok := c.polls.Lookup(name)
	if !ok {
		return models.ResultSnapshot{}, fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}

	rep, err := c.agg.Report(ctx, name)
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("failed to read tally: %w", err)
	}
	return results.Compute(def, rep.Tally, rep.Ballots, c.now()), nil
}

// Who lists connected sessions
func (c *Controller) Who(ctx context.Context) ([]models.SessionInfo, error) {
	return c.reg.Who(ctx)
}

// Kick ends one session and waits until it is gone
func (c *Controller) Kick(ctx context.Context, id int) error {
	return c.reg.Kick(ctx, id)
}

// Shutdown ends every session and waits until they are gone
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.reg.Shutdown(ctx)
}
