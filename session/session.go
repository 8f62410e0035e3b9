// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/danielhkuo/voteserver/mailbox"
	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
	"github.com/danielhkuo/voteserver/registrar"
)

// ErrConnectionLost is returned by Run when the participant went away
var ErrConnectionLost = errors.New("connection lost")

// MaxLineLength bounds one line of participant input
const MaxLineLength = 16 * 1024

var errLineTooLong = errors.New("line too long")

// State is a step of the session protocol
type State int32

const (
	StateConnecting State = iota
	StateNameEntry
	StateAwaitingPoll
	StateVoting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateNameEntry:
		return "name-entry"
	case StateAwaitingPoll:
		return "awaiting-poll"
	case StateVoting:
		return "voting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Polls is the read side of the poll registry
type Polls interface {
	Lookup(name string) (polls.Definition, bool)
	Round(name string) (int, bool)
}

// Registrar is the session directory
type Registrar interface {
	Register(ctx context.Context, m registrar.Member) (int, error)
	Leave(id int)
}

// Aggregator accepts finished ballots
type Aggregator interface {
	Submit(b models.Ballot)
}

// Env carries everything a session needs besides its connection
type Env struct {
	Polls      Polls
	Registrar  Registrar
	Aggregator Aggregator
	Banner     string
	WelcomeMsg string
	Logger     *slog.Logger
}

// Session runs the protocol for one connected participant
type Session struct {
	env    Env
	conn   net.Conn
	remote string
	in     *bufio.Reader
	out    *bufio.Writer
	logger *slog.Logger

	mailbox *mailbox.Mailbox[models.Notice]
	done    chan struct{}
	closing chan struct{}
	once    sync.Once
	state   atomic.Int32
	id      atomic.Int64

	name string // set before registration, read-only afterwards
}

func New(conn net.Conn, env Env) *Session {
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	s := &Session{
		env:     env,
		conn:    conn,
		remote:  conn.RemoteAddr().String(),
		in:      bufio.NewReader(conn),
		out:     bufio.NewWriter(conn),
		logger:  env.Logger,
		mailbox: mailbox.New[models.Notice](),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	s.id.Store(-1)
	return s
}

func (s *Session) Name() string { return s.name }

func (s *Session) RemoteAddr() string { return s.remote }

// ID returns the registered id, or -1 before registration
func (s *Session) ID() int { return int(s.id.Load()) }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) Done() <-chan struct{} { return s.done }

// Deliver queues a notice. A poll already waiting in the mailbox is not
// queued twice.
func (s *Session) Deliver(n models.Notice) {
	s.mailbox.PushUnless(n, func(q models.Notice) bool { return q == n })
}

// Close drops the connection. A session blocked on input or on its mailbox
// returns promptly.
func (s *Session) Close() error {
	s.once.Do(func() { close(s.closing) })
	return s.conn.Close()
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Run drives the session until shutdown, connection loss or ctx is done.
// It closes the connection before returning.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.closing:
			cancel()
		case <-ctx.Done():
		}
	}()

	defer func() {
		s.setState(StateTerminated)
		s.conn.Close()
		if id := s.ID(); id >= 0 {
			s.env.Registrar.Leave(id)
		}
		close(s.done)
	}()

	s.setState(StateNameEntry)
	if err := s.login(); err != nil {
		return err
	}

	id, err := s.env.Registrar.Register(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	s.id.Store(int64(id))

	for {
		s.setState(StateAwaitingPoll)
		if err := s.message("Waiting for polls to open..."); err != nil {
			return err
		}

		n, err := s.mailbox.Pop(ctx)
		if err != nil {
			return err
		}
		if n.Shutdown {
			return s.message("Polling is over. Thanks for voting!")
		}

		// The poll may have closed since the notice was queued
		round, open := s.env.Polls.Round(n.PollID)
		if !open {
			continue
		}
		def, ok := s.env.Polls.Lookup(n.PollID)
		if !ok {
			continue
		}

		s.setState(StateVoting)
		if err := s.vote(def, round); err != nil {
			return err
		}
	}
}

func (s *Session) login() error {
	s.clearAndBanner()
	if s.env.WelcomeMsg != "" {
		fmt.Fprintf(s.out, "\n%s\n\n", s.env.WelcomeMsg)
	}
	fmt.Fprintln(s.out, "Please enter your name, it will be used to catch voting discrepancies.")
	fmt.Fprintln(s.out, "Your name will NOT be associated with your votes.")
	fmt.Fprintln(s.out)
	for {
		fmt.Fprint(s.out, "Your full name: ")
		if err := s.flush(); err != nil {
			return err
		}

		name, err := s.readLine()
		if errors.Is(err, errLineTooLong) {
			continue
		}
		if err != nil {
			return err
		}
		s.name = name
		return nil
	}
}

// vote shows the poll and reads lines until one parses
func (s *Session) vote(def polls.Definition, round int) error {
	s.renderPoll(def)

	for {
		fmt.Fprint(s.out, prompt(def))
		if err := s.flush(); err != nil {
			return err
		}

		line, err := s.readLine()
		if errors.Is(err, errLineTooLong) {
			s.logger.Debug("ballot rejected", "session", s.ID(), "poll", def.Name, "reason", err)
			continue
		}
		if err != nil {
			return err
		}

		res := ParseBallot(def, line)
		if !res.OK() {
			s.logger.Debug("ballot rejected", "session", s.ID(), "poll", def.Name, "reason", res.Reason)
			continue
		}

		s.env.Aggregator.Submit(models.Ballot{PollID: def.Name, Round: round, Choice: res.Choice})
		s.logger.Debug("ballot submitted", "session", s.ID(), "poll", def.Name, "round", round)
		return nil
	}
}

// readLine reads one line of input. A line longer than MaxLineLength is
// consumed in full and reported as errLineTooLong.
func (s *Session) readLine() (string, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		frag, more, err := s.in.ReadLine()
		if err != nil {
			if len(buf) > 0 && errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
		if !tooLong && len(buf)+len(frag) > MaxLineLength {
			tooLong = true
			buf = nil
		}
		if !tooLong {
			buf = append(buf, frag...)
		}
		if !more {
			break
		}
	}
	if tooLong {
		return "", errLineTooLong
	}
	return strings.ToValidUTF8(strings.TrimSpace(string(buf)), "�"), nil
}

func (s *Session) flush() error {
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}
