// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/middleware"
)

type PollHandler struct {
	ctl *control.Controller
	cfg cliparse.Config
}

func NewPollHandler(ctl *control.Controller, cfg cliparse.Config) *PollHandler {
	return &PollHandler{ctl: ctl, cfg: cfg}
}

// Vote handles "vote <poll>"
// Opens the poll and pushes it to every connected session
func (h *PollHandler) Vote(w io.Writer, r *console.Request) {
	name := r.Arg("poll")

	round, err := h.ctl.Open(r.Context(), name)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	fmt.Fprintf(w, "Opened %s (round %d)\n", name, round)
}

// Close handles "close <poll>"
func (h *PollHandler) Close(w io.Writer, r *console.Request) {
	name := r.Arg("poll")

	if err := h.ctl.Close(name); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	fmt.Fprintf(w, "Closed %s\n", name)
}

// Revote handles "revote <poll>"
// Throws away every ballot cast so far and opens the poll again
func (h *PollHandler) Revote(w io.Writer, r *console.Request) {
	name := r.Arg("poll")

	round, err := h.ctl.Revote(r.Context(), name)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	slog.Info("revote started", "poll", name, "round", round)
	fmt.Fprintf(w, "Reopened %s for a revote (round %d)\n", name, round)
}

// List handles "list"
func (h *PollHandler) List(w io.Writer, r *console.Request) {
	tw := middleware.Table(w)
	for _, st := range h.ctl.List() {
		state := "closed"
		if st.Open {
			state = "open"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\tround %d\n", st.Definition.Name, st.Definition.Kind, state, st.Round)
	}
	tw.Flush()
}

// Options handles "options <poll>"
func (h *PollHandler) Options(w io.Writer, r *console.Request) {
	opts, err := h.ctl.Options(r.Arg("poll"))
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	for i, opt := range opts {
		fmt.Fprintf(w, "%d) %s\n", i+1, opt)
	}
}

// RemoveOption handles "rmopt <poll> <index>"
// Sessions that already show the poll keep their numbering
func (h *PollHandler) RemoveOption(w io.Writer, r *console.Request) {
	name := r.Arg("poll")

	index, err := middleware.IntArg(r, "index")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	label, err := h.ctl.RemoveOption(name, index)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	fmt.Fprintf(w, "Removed option %d (%s) from %s\n", index, label, name)
}
