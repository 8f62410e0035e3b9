// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrUnknownPoll      = errors.New("unknown poll")
	ErrPollAlreadyOpen  = errors.New("poll is already open")
	ErrPollNotOpen      = errors.New("poll is not open")
	ErrNoOptions        = errors.New("poll has no options")
	ErrOptionOutOfRange = errors.New("option not in range")
	ErrUnknownSession   = errors.New("session id unknown")
	ErrStopped          = errors.New("worker stopped")
)
