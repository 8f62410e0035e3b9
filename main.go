// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/voteserver/aggregator"
	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/db"
	"github.com/danielhkuo/voteserver/polls"
	"github.com/danielhkuo/voteserver/registrar"
	"github.com/danielhkuo/voteserver/router"
	"github.com/danielhkuo/voteserver/server"
	"github.com/danielhkuo/voteserver/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("voteserver failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cliparse.LoadEnv(); err != nil {
		return err
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := cliparse.NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	pollCfg, err := polls.Load(cfg.PollConfig)
	if err != nil {
		return err
	}
	logger.Info("polls loaded", "file", cfg.PollConfig, "count", len(pollCfg.Polls))

	ctx := context.Background()

	// The archive is optional
	var archive *sql.DB
	if cfg.DatabaseURL != "" {
		archive, err = db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer archive.Close()
		logger.Info("Database schema ready", "type", cfg.DatabaseType)
	}

	registry := polls.NewRegistry(pollCfg.Polls)
	reg := registrar.New(registry, logger)
	agg := aggregator.New(logger)
	ctl := control.New(registry, reg, agg, logger)

	srv := server.New(session.Env{
		Polls:      registry,
		Registrar:  reg,
		Aggregator: agg,
		Banner:     pollCfg.Banner,
		WelcomeMsg: pollCfg.WelcomeMsg,
		Logger:     logger,
	}, logger)

	l, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	g, gctx := errgroup.WithContext(workerCtx)
	g.Go(func() error { return ignoreCanceled(reg.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(agg.Run(gctx)) })
	g.Go(func() error { return srv.Serve(serveCtx, l) })

	logger.Info("Listening", "port", cfg.Port)

	// exit, EOF on stdin, SIGINT and SIGTERM all end the console
	consoleCtx, stopConsole := signal.NotifyContext(gctx, os.Interrupt, syscall.SIGTERM)
	defer stopConsole()

	mux := router.NewRouter(ctl, archive, srv, cfg, stopConsole)
	if err := console.Run(consoleCtx, os.Stdin, os.Stdout, mux, console.IsTerminal(os.Stdin)); err != nil {
		logger.Error("console failed", "error", err)
	}

	shutdown(logger, cfg, ctl, srv, stopServing)

	stopWorkers()
	err = g.Wait()
	logger.Info("Server closed", "error", err)
	return err
}

// shutdown stops accepting, tells every session to finish and cuts off the
// ones still running after the grace period
func shutdown(logger *slog.Logger, cfg cliparse.Config, ctl *control.Controller, srv *server.Server, stopServing func()) {
	stopServing()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := ctl.Shutdown(ctx); err != nil {
		logger.Warn("sessions did not finish in time", "grace", cfg.ShutdownGrace, "error", err)
	}
	srv.CloseAll()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if err := srv.Wait(waitCtx); err != nil {
		logger.Warn("sessions still running at exit", "count", srv.Count())
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
