// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package control implements the operator's view of a running server:
// opening, closing and re-running polls, editing options, reading results
// and managing connected sessions.
package control
