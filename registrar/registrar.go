// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registrar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/voteserver/mailbox"
	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
)

// Member is a registered session as seen by the directory
type Member interface {
	Name() string
	RemoteAddr() string
	// Deliver queues a notice in the member's mailbox without blocking
	Deliver(n models.Notice)
	// Done is closed once the member has terminated
	Done() <-chan struct{}
}

type op int

const (
	opRegister op = iota
	opLeave
	opOpenPoll
	opKick
	opShutdown
	opWho
)

type request struct {
	op     op
	member Member
	id     int
	pollID string
	reply  chan response
}

type response struct {
	id      int
	round   int
	err     error
	members []Member
	infos   []models.SessionInfo
}

type entry struct {
	member   Member
	joinedAt time.Time
}

// Registrar is the session directory. Registration, departures and poll
// fan-out are applied one at a time by the goroutine running Run.
type Registrar struct {
	queue  *mailbox.Mailbox[request]
	polls  *polls.Registry
	logger *slog.Logger
	done   chan struct{}

	// owned by Run
	nextID  int
	members map[int]entry
	closed  bool
}

func New(registry *polls.Registry, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		queue:   mailbox.New[request](),
		polls:   registry,
		logger:  logger,
		done:    make(chan struct{}),
		members: make(map[int]entry),
	}
}

// Run processes requests until ctx is done
func (r *Registrar) Run(ctx context.Context) error {
	defer close(r.done)

	for {
		req, err := r.queue.Pop(ctx)
		if err != nil {
			return err
		}

		switch req.op {
		case opRegister:
			req.reply <- response{id: r.register(req.member)}
		case opLeave:
			if e, ok := r.members[req.id]; ok {
				delete(r.members, req.id)
				r.logger.Info("session left", "id", req.id, "name", e.member.Name())
			}
		case opOpenPoll:
			round, err := r.openPoll(req.pollID)
			req.reply <- response{round: round, err: err}
		case opKick:
			e, ok := r.members[req.id]
			if !ok {
				req.reply <- response{err: fmt.Errorf("%w: %d", models.ErrUnknownSession, req.id)}
				continue
			}
			delete(r.members, req.id)
			e.member.Deliver(models.ShutdownNotice)
			r.logger.Info("kicking session", "id", req.id, "name", e.member.Name())
			req.reply <- response{members: []Member{e.member}}
		case opShutdown:
			r.closed = true
			members := make([]Member, 0, len(r.members))
			for _, id := range r.ids() {
				members = append(members, r.members[id].member)
				r.members[id].member.Deliver(models.ShutdownNotice)
				delete(r.members, id)
			}
			req.reply <- response{members: members}
		case opWho:
			infos := make([]models.SessionInfo, 0, len(r.members))
			for _, id := range r.ids() {
				e := r.members[id]
				infos = append(infos, models.SessionInfo{
					ID:         id,
					Name:       e.member.Name(),
					RemoteAddr: e.member.RemoteAddr(),
					JoinedAt:   e.joinedAt,
				})
			}
			req.reply <- response{infos: infos}
		}
	}
}

func (r *Registrar) register(m Member) int {
	id := r.nextID
	r.nextID++

	// Late arrivals during shutdown get an id but are told to leave at once
	if r.closed {
		m.Deliver(models.ShutdownNotice)
		return id
	}

	r.members[id] = entry{member: m, joinedAt: time.Now()}
	for _, pollID := range r.polls.OpenPolls() {
		m.Deliver(models.PollNotice(pollID))
	}

	r.logger.Info("session registered", "id", id, "name", m.Name(), "remote", m.RemoteAddr())
	return id
}

// openPoll runs on the Run goroutine so a concurrent registration sees the
// poll exactly once: either seeded from the open set or via the fan-out
func (r *Registrar) openPoll(pollID string) (int, error) {
	round, err := r.polls.Open(pollID)
	if err != nil {
		return 0, err
	}
	for _, id := range r.ids() {
		r.members[id].member.Deliver(models.PollNotice(pollID))
	}
	r.logger.Info("poll opened", "poll", pollID, "round", round, "sessions", len(r.members))
	return round, nil
}

func (r *Registrar) ids() []int {
	ids := make([]int, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Register adds m to the directory, seeds its mailbox with every open poll
// and returns its id. Ids are never reused.
func (r *Registrar) Register(ctx context.Context, m Member) (int, error) {
	resp, err := r.call(ctx, request{op: opRegister, member: m})
	return resp.id, err
}

// Leave removes a terminated session from the directory
func (r *Registrar) Leave(id int) {
	r.queue.Push(request{op: opLeave, id: id})
}

// OpenPoll opens the poll and queues a notice for every registered session
func (r *Registrar) OpenPoll(ctx context.Context, pollID string) (int, error) {
	resp, err := r.call(ctx, request{op: opOpenPoll, pollID: pollID})
	if err != nil {
		return 0, err
	}
	return resp.round, resp.err
}

// Kick tells one session to finish and waits until it has
func (r *Registrar) Kick(ctx context.Context, id int) error {
	resp, err := r.call(ctx, request{op: opKick, id: id})
	if err != nil {
		return err
	}
	if resp.err != nil {
		return resp.err
	}
	return wait(ctx, resp.members)
}

// Shutdown tells every session to finish and waits for all of them. Later
// registrations are told to finish immediately.
func (r *Registrar) Shutdown(ctx context.Context) error {
	resp, err := r.call(ctx, request{op: opShutdown})
	if err != nil {
		return err
	}
	return wait(ctx, resp.members)
}

// Who lists registered sessions ordered by id
func (r *Registrar) Who(ctx context.Context) ([]models.SessionInfo, error) {
	resp, err := r.call(ctx, request{op: opWho})
	return resp.infos, err
}

func (r *Registrar) call(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	r.queue.Push(req)

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-r.done:
		return response{}, models.ErrStopped
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

func wait(ctx context.Context, members []Member) error {
	for _, m := range members {
		select {
		case <-m.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
