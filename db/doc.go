// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db archives computed poll results.

The archive is optional: tallies live in memory and the server runs
without a database. When one is configured, every results command stores a
snapshot so the numbers survive the process.

# Opening

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(github.com/lib/pq) and creates the schema:

	conn, err := db.Open(ctx, "sqlite", "file:votes.db")

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - result_snapshot: one row per archived result; payload holds the full
    snapshot as JSON

# Usage

	err := db.SaveSnapshot(ctx, conn, snap)
	snaps, err := db.ListSnapshots(ctx, conn, "budget") // newest first
*/
package db
