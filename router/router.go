// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"

	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/handlers"
	"github.com/danielhkuo/voteserver/middleware"
)

// NewRouter registers every operator command. db may be nil; stop ends the
// console loop.
func NewRouter(ctl *control.Controller, db *sql.DB, conns handlers.Disconnecter, cfg cliparse.Config, stop func()) *console.Mux {
	mux := console.NewMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(ctl, cfg)
	sessionHandler := handlers.NewSessionHandler(ctl, conns, cfg, stop)
	resultsHandler := handlers.NewResultsHandler(ctl, db, cfg)

	// Sessions
	mux.HandleFunc("exit", "end every session and stop the server", middleware.WithLogging(sessionHandler.Exit))
	mux.HandleFunc("kick {id}", "end one session", middleware.WithLogging(sessionHandler.Kick))
	mux.HandleFunc("who", "list connected sessions", middleware.WithLogging(sessionHandler.Who))

	// Poll lifecycle
	mux.HandleFunc("vote {poll}", "open a poll on every session", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("close {poll}", "stop offering a poll", middleware.WithLogging(pollHandler.Close))
	mux.HandleFunc("list", "list configured polls", middleware.WithLogging(pollHandler.List))
	mux.HandleFunc("revote {poll}", "discard all ballots and open the poll again", middleware.WithLogging(pollHandler.Revote))

	// Options
	mux.HandleFunc("options {poll}", "list a poll's options", middleware.WithLogging(pollHandler.Options))
	mux.HandleFunc("rmopt {poll} {index}", "remove an option", middleware.WithLogging(pollHandler.RemoveOption))

	// Results
	mux.HandleFunc("results {poll}", "show current results", middleware.WithLogging(resultsHandler.Results))
	mux.HandleFunc("history {poll}", "list archived results", middleware.WithLogging(resultsHandler.History))

	mux.HandleFunc("help", "show this list", mux.Help)

	return mux
}
