// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/voteserver/models"
)

// Open connects to the archive database and makes sure the schema exists.
// dbType is "sqlite" or "postgres".
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// SaveSnapshot archives one computed result
func SaveSnapshot(ctx context.Context, db *sql.DB, snap models.ResultSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO result_snapshot (id, poll_id, method, ballot_count, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, snap.ID, snap.PollID, snap.Method, snap.BallotCount, snap.ComputedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// ListSnapshots returns the archived results of a poll, newest first
func ListSnapshots(ctx context.Context, db *sql.DB, pollID string) ([]models.ResultSnapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT payload
		FROM result_snapshot
		WHERE poll_id = $1
		ORDER BY computed_at DESC, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.ResultSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		var snap models.ResultSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}
