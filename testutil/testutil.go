// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bufio"
	"context"
	"database/sql"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/voteserver/cliparse"
	"github.com/danielhkuo/voteserver/db"
	"github.com/danielhkuo/voteserver/mailbox"
	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
)

// Timeout bounds every wait in tests
const Timeout = 2 * time.Second

// SetupTestDB opens an in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every pooled connection would get its own empty in-memory database
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          0,
		PollConfig:    "vote.yaml",
		DatabaseType:  "sqlite",
		ShutdownGrace: time.Second,
		LogLevel:      "error",
		LogFormat:     "text",
	}
}

// TestPolls returns one poll of every kind
func TestPolls() []polls.Definition {
	return []polls.Definition{
		{Name: "budget", Kind: models.KindYesNo, Question: "Approve the budget?"},
		{Name: "color", Kind: models.KindSingleChoice, Title: "Team color", Options: []string{"Red", "Blue", "Green"}},
		{Name: "snacks", Kind: models.KindMultiChoice, Options: []string{"Chips", "Fruit", "Cookies"}, WriteIn: true},
		{Name: "chair", Kind: models.KindRanked, Options: []string{"A", "B", "C"}, WriteIn: true},
	}
}

// NewTestRegistry returns a registry loaded with TestPolls
func NewTestRegistry() *polls.Registry {
	return polls.NewRegistry(TestPolls())
}

// FakeMember records delivered notices instead of running a session
type FakeMember struct {
	name    string
	Notices *mailbox.Mailbox[models.Notice]
	done    chan struct{}
	once    sync.Once
}

func NewFakeMember(name string) *FakeMember {
	return &FakeMember{
		name:    name,
		Notices: mailbox.New[models.Notice](),
		done:    make(chan struct{}),
	}
}

func (m *FakeMember) Name() string { return m.name }

func (m *FakeMember) RemoteAddr() string { return "pipe" }

func (m *FakeMember) Deliver(n models.Notice) { m.Notices.Push(n) }

func (m *FakeMember) Done() <-chan struct{} { return m.done }

// Finish marks the member terminated
func (m *FakeMember) Finish() { m.once.Do(func() { close(m.done) }) }

// Next waits for the next delivered notice
func (m *FakeMember) Next(t *testing.T) models.Notice {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	n, err := m.Notices.Pop(ctx)
	if err != nil {
		t.Fatalf("No notice delivered to %s: %v", m.name, err)
	}
	return n
}

// FinishOnShutdown closes Done as soon as a shutdown notice arrives
func (m *FakeMember) FinishOnShutdown() {
	go func() {
		for {
			n, err := m.Notices.Pop(context.Background())
			if err != nil || n.Shutdown {
				m.Finish()
				return
			}
		}
	}()
}

// Eventually polls cond until it holds or Timeout passes
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(Timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Condition not met: %s", msg)
}

// Client drives the participant side of a connection
type Client struct {
	Conn    net.Conn
	reader  *bufio.Reader
	pending string
}

// NewClient wraps the participant end of conn
func NewClient(t *testing.T, conn net.Conn) *Client {
	t.Helper()

	t.Cleanup(func() { conn.Close() })
	return &Client{Conn: conn, reader: bufio.NewReader(conn)}
}

// NewPipe returns the server end of an in-memory connection and a client for
// the other end
func NewPipe(t *testing.T) (net.Conn, *Client) {
	t.Helper()

	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, &Client{Conn: client, reader: bufio.NewReader(client)}
}

// Send writes one line
func (c *Client) Send(t *testing.T, line string) {
	t.Helper()

	c.Conn.SetWriteDeadline(time.Now().Add(Timeout))
	if _, err := c.Conn.Write([]byte(line + "\r\n")); err != nil {
		t.Fatalf("Failed to send %q: %v", line, err)
	}
}

// ReadUntil consumes server output up to and including marker and returns
// it. Output after the marker is kept for the next call.
func (c *Client) ReadUntil(t *testing.T, marker string) string {
	t.Helper()

	c.Conn.SetReadDeadline(time.Now().Add(Timeout))
	buf := make([]byte, 512)
	for !strings.Contains(c.pending, marker) {
		n, err := c.reader.Read(buf)
		c.pending += string(buf[:n])
		if err != nil && !strings.Contains(c.pending, marker) {
			t.Fatalf("Did not see %q (err %v); got:\n%s", marker, err, c.pending)
		}
	}

	end := strings.Index(c.pending, marker) + len(marker)
	out := c.pending[:end]
	c.pending = c.pending[end:]
	return out
}
