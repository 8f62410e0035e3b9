// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/middleware"
)

// Disconnecter drops a session's connection
type Disconnecter interface {
	Disconnect(id int) bool
}

type SessionHandler struct {
	ctl   *control.Controller
	conns Disconnecter
	cfg   cliparse.Config
	stop  func()
	now   func() time.Time
}

// NewSessionHandler creates the session handler. stop ends the console
// loop; the caller shuts the sessions down afterwards.
func NewSessionHandler(ctl *control.Controller, conns Disconnecter, cfg cliparse.Config, stop func()) *SessionHandler {
	return &SessionHandler{ctl: ctl, conns: conns, cfg: cfg, stop: stop, now: time.Now}
}

// Who handles "who"
func (h *SessionHandler) Who(w io.Writer, r *console.Request) {
	infos, err := h.ctl.Who(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No sessions connected")
		return
	}

	tw := middleware.Table(w)
	for _, info := range infos {
		fmt.Fprintf(tw, "%d\t(%s)\t%s\tjoined %s\n",
			info.ID, info.Name, info.RemoteAddr, humanize.RelTime(info.JoinedAt, h.now(), "ago", "from now"))
	}
	tw.Flush()
}

// Kick handles "kick <id>"
// Waits for the session to finish its ballot for up to the shutdown grace,
// then drops the connection
func (h *SessionHandler) Kick(w io.Writer, r *console.Request) {
	id, err := middleware.IntArg(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ShutdownGrace)
	defer cancel()

	err = h.ctl.Kick(ctx, id)
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("session did not finish in time", "id", id)
		h.conns.Disconnect(id)
		err = nil
	}
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	fmt.Fprintf(w, "Kicked %d\n", id)
}

// Exit handles "exit"
func (h *SessionHandler) Exit(w io.Writer, r *console.Request) {
	fmt.Fprintln(w, "Shutting down...")
	h.stop()
}
