// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registrar keeps the directory of connected sessions.

# Registration

Register assigns the next session id (0, 1, 2, ...; never reused) and seeds
the new session's mailbox with every open poll, oldest first:

	id, err := reg.Register(ctx, sess)

# Fan-out

OpenPoll opens a poll in the registry and queues a notice for every
registered session. Both happen on the registrar goroutine, so a session
registering at the same moment gets the poll exactly once.

# Termination

Kick and Shutdown deliver the shutdown notice and wait until the targeted
sessions report Done. Sessions finish cooperatively: one in the middle of a
ballot finishes it first, so callers should bound the wait with a context.
*/
package registrar
