// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mailbox provides the unbounded ordered queue used for session
mailboxes and for the request queues of the single-writer workers.

# Usage

	mb := mailbox.New[models.Notice]()
	mb.Push(models.PollNotice("budget"))

	n, err := mb.Pop(ctx) // blocks until an item arrives or ctx is done

Push never blocks, so a slow consumer can never stall the producer. Items
are delivered in the order they were pushed.

# Deduplication

PushUnless skips the push when an already queued item matches:

	mb.PushUnless(n, func(q models.Notice) bool { return q == n })
*/
package mailbox
