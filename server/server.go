// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/danielhkuo/voteserver/session"
)

// Server accepts participant connections and runs one session for each
type Server struct {
	env    session.Env
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[*session.Session]struct{}
	draining bool // set by CloseAll and Wait
	wg       sync.WaitGroup
}

func New(env session.Env, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if env.Logger == nil {
		env.Logger = logger
	}
	return &Server{
		env:      env,
		logger:   logger,
		sessions: make(map[*session.Session]struct{}),
	}
}

// Serve accepts connections on l until ctx is done or l is closed.
// Sessions outlive ctx: they end on the shutdown notice or when their
// connection is closed.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	sessCtx := context.WithoutCancel(ctx)
	for {
		c, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept failed", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		s.serve(sessCtx, c)
	}
}

func (s *Server) serve(ctx context.Context, c net.Conn) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		s.logger.Debug("connection refused while draining", "remote", c.RemoteAddr().String())
		c.Close()
		return
	}
	sess := session.New(c, s.env)
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug("connection accepted", "remote", c.RemoteAddr().String())

	go func() {
		defer s.wg.Done()

		err := sess.Run(ctx)
		if err != nil && !errors.Is(err, session.ErrConnectionLost) {
			s.logger.Warn("session ended", "id", sess.ID(), "error", err)
		} else {
			s.logger.Debug("session ended", "id", sess.ID(), "remote", sess.RemoteAddr())
		}

		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
	}()
}

// Count returns the number of live connections
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Disconnect drops the connection of the session with the given id
func (s *Server) Disconnect(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sess := range s.sessions {
		if sess.ID() == id {
			sess.Close()
			return true
		}
	}
	return false
}

// CloseAll drops every connection, including ones still logging in, and
// refuses later ones
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draining = true

	for sess := range s.sessions {
		sess.Close()
	}
}

// Wait blocks until every session has ended or ctx is done. Connections
// accepted after Wait is called are closed without a session.
func (s *Server) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
