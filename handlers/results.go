// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/db"
	"github.com/danielhkuo/voteserver/middleware"
	"github.com/danielhkuo/voteserver/models"
)

var errNoArchive = errors.New("no result archive configured")

type ResultsHandler struct {
	ctl *control.Controller
	db  *sql.DB
	cfg cliparse.Config
}

// NewResultsHandler creates the results handler. db may be nil when no
// archive is configured.
func NewResultsHandler(ctl *control.Controller, db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{ctl: ctl, db: db, cfg: cfg}
}

// Results handles "results <poll>"
// Prints the current standings and archives them when a database is set up
func (h *ResultsHandler) Results(w io.Writer, r *console.Request) {
	snap, err := h.ctl.Results(r.Context(), r.Arg("poll"))
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	writeSnapshot(w, snap)

	if h.db == nil {
		return
	}
	if err := db.SaveSnapshot(r.Context(), h.db, snap); err != nil {
		slog.Error("failed to archive results", "poll", snap.PollID, "error", err)
		middleware.ErrorResponse(w, r, err)
		return
	}
	slog.Info("results archived", "poll", snap.PollID, "snapshot_id", snap.ID)
}

// History handles "history <poll>"
// Lists archived results, newest first
func (h *ResultsHandler) History(w io.Writer, r *console.Request) {
	if h.db == nil {
		middleware.ErrorResponse(w, r, errNoArchive)
		return
	}

	snaps, err := db.ListSnapshots(r.Context(), h.db, r.Arg("poll"))
	if err != nil {
		slog.Error("failed to list snapshots", "error", err)
		middleware.ErrorResponse(w, r, err)
		return
	}
	if len(snaps) == 0 {
		fmt.Fprintf(w, "No archived results for %s\n", r.Arg("poll"))
		return
	}

	tw := middleware.Table(w)
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s ballots\t%s\n",
			s.ComputedAt.Local().Format("2006-01-02 15:04:05"), s.Method, humanize.Comma(int64(s.BallotCount)), s.ID)
	}
	tw.Flush()
}

func writeSnapshot(w io.Writer, snap models.ResultSnapshot) {
	ballots := humanize.Comma(int64(snap.BallotCount))
	if snap.BallotCount == 1 {
		fmt.Fprintf(w, "%s: 1 ballot\n", snap.PollID)
	} else {
		fmt.Fprintf(w, "%s: %s ballots\n", snap.PollID, ballots)
	}

	if snap.Ranked == nil {
		for _, cs := range snap.Choices {
			fmt.Fprintf(w, "%s - %s votes (%.2f%%)\n", cs.Choice, humanize.Comma(int64(cs.Votes)), cs.Percent)
		}
		return
	}

	ranked := snap.Ranked
	for _, p := range ranked.Placements {
		fmt.Fprintf(w, "%s. %s\n", humanize.Ordinal(p.Rank), strings.Join(p.Candidates, ", "))
	}

	for _, rt := range ranked.Rounds {
		parts := make([]string, 0, len(rt.Tallies))
		for _, name := range sortedCandidates(rt.Tallies) {
			parts = append(parts, fmt.Sprintf("%s %d", name, rt.Tallies[name]))
		}
		line := fmt.Sprintf("  round %d: %s; eliminated %s", rt.Round, strings.Join(parts, ", "), strings.Join(rt.Eliminated, ", "))
		if rt.Exhausted > 0 {
			line += fmt.Sprintf("; %d exhausted", rt.Exhausted)
		}
		fmt.Fprintln(w, line)
	}

	if ranked.Abstentions > 0 {
		fmt.Fprintf(w, "ABSTAIN - %s votes\n", humanize.Comma(int64(ranked.Abstentions)))
	}
}

// sortedCandidates orders a round by votes, most first, then by name
func sortedCandidates(tallies map[string]int) []string {
	names := make([]string, 0, len(tallies))
	for name := range tallies {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if tallies[a] != tallies[b] {
			return tallies[b] - tallies[a]
		}
		return strings.Compare(a, b)
	})
	return names
}
