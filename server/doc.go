// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package server accepts participant connections.

Each accepted connection gets its own goroutine running a session:

	srv := server.New(env, logger)
	go srv.Serve(ctx, listener)

Cancelling ctx stops accepting but leaves running sessions alone. They end
through the registrar's shutdown notice; sessions that do not finish in
time are cut off with CloseAll.
*/
package server
