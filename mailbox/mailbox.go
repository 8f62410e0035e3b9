// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailbox

import (
	"context"
	"sync"
)

// Mailbox is an unbounded FIFO queue. Push never blocks; Pop blocks until an
// item is available or the context is done.
type Mailbox[T any] struct {
	mu    sync.Mutex
	items []T
	ready chan struct{} // capacity 1, holds a token while items may be non-empty
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Push appends v to the tail of the queue
func (m *Mailbox[T]) Push(v T) {
	m.mu.Lock()
	m.items = append(m.items, v)
	m.mu.Unlock()
	m.signal()
}

// PushUnless appends v unless an item already queued satisfies match.
// Reports whether v was queued.
func (m *Mailbox[T]) PushUnless(v T, match func(T) bool) bool {
	m.mu.Lock()
	for _, item := range m.items {
		if match(item) {
			m.mu.Unlock()
			return false
		}
	}
	m.items = append(m.items, v)
	m.mu.Unlock()
	m.signal()
	return true
}

// Pop removes and returns the head of the queue, waiting for one if needed
func (m *Mailbox[T]) Pop(ctx context.Context) (T, error) {
	for {
		if v, ok := m.TryPop(); ok {
			return v, nil
		}
		select {
		case <-m.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryPop returns the head of the queue without waiting
func (m *Mailbox[T]) TryPop() (T, bool) {
	var zero T

	m.mu.Lock()
	if len(m.items) == 0 {
		m.mu.Unlock()
		return zero, false
	}
	v := m.items[0]
	m.items[0] = zero
	m.items = m.items[1:]
	more := len(m.items) > 0
	m.mu.Unlock()

	// Pass the token on so another waiter (or the next Pop) sees the rest
	if more {
		m.signal()
	}
	return v, true
}

// Len returns the number of queued items
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Mailbox[T]) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
