// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/danielhkuo/voteserver/aggregator"
	"github.com/danielhkuo/voteserver/console"
	"github.com/danielhkuo/voteserver/control"
	"github.com/danielhkuo/voteserver/registrar"
	"github.com/danielhkuo/voteserver/server"
	"github.com/danielhkuo/voteserver/session"
	"github.com/danielhkuo/voteserver/testutil"
)

type stack struct {
	mux     *console.Mux
	srv     *server.Server
	addr    string
	stopped bool
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	registry := testutil.NewTestRegistry()
	reg := registrar.New(registry, nil)
	agg := aggregator.New(nil)
	ctl := control.New(registry, reg, agg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go reg.Run(ctx)
	go agg.Run(ctx)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	s := &stack{addr: l.Addr().String()}
	s.srv = server.New(session.Env{Polls: registry, Registrar: reg, Aggregator: agg}, nil)
	go s.srv.Serve(ctx, l)

	s.mux = NewRouter(ctl, testutil.SetupTestDB(t), s.srv, testutil.GetTestConfig(), func() { s.stopped = true })

	t.Cleanup(func() {
		cancel()
		s.srv.CloseAll()
	})
	return s
}

func (s *stack) do(line string) string {
	var out bytes.Buffer
	s.mux.Dispatch(context.Background(), &out, line)
	return out.String()
}

func (s *stack) join(t *testing.T, name string) *testutil.Client {
	t.Helper()

	conn, err := net.DialTimeout("tcp", s.addr, testutil.Timeout)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	client := testutil.NewClient(t, conn)
	client.ReadUntil(t, "Your full name: ")
	client.Send(t, name)
	client.ReadUntil(t, "Waiting for polls to open...")
	return client
}

func TestEveryCommandRegistered(t *testing.T) {
	s := setupStack(t)

	help := s.do("help")
	for _, usage := range []string{
		"exit", "kick <id>", "who", "vote <poll>", "close <poll>", "list",
		"results <poll>", "options <poll>", "rmopt <poll> <index>", "revote <poll>",
		"history <poll>", "help",
	} {
		if !strings.Contains(help, "  "+usage+" ") {
			t.Errorf("help does not list %q:\n%s", usage, help)
		}
	}
}

func TestUsageLines(t *testing.T) {
	s := setupStack(t)

	if got := s.do("kick"); got != "usage: kick <id>\n" {
		t.Errorf("Unexpected output %q", got)
	}
	if got := s.do("rmopt color"); got != "usage: rmopt <poll> <index>\n" {
		t.Errorf("Unexpected output %q", got)
	}
	if got := s.do("shout"); !strings.HasPrefix(got, "unknown command") {
		t.Errorf("Unexpected output %q", got)
	}
}

// TestFullVotingWorkflow drives the server the way an operator would:
// 1. Two participants join
// 2. The operator opens a poll and both vote
// 3. Results are shown and archived
// 4. A revote clears the tally
// 5. One participant is kicked and the operator exits
func TestFullVotingWorkflow(t *testing.T) {
	s := setupStack(t)

	// Step 1
	alice := s.join(t, "Alice")
	bob := s.join(t, "Bob")

	who := s.do("who")
	if !strings.Contains(who, "(Alice)") || !strings.Contains(who, "(Bob)") {
		t.Fatalf("Step 1 - who is missing participants:\n%s", who)
	}

	// Step 2
	if got := s.do("vote chair"); got != "Opened chair (round 1)\n" {
		t.Fatalf("Step 2 - vote failed: %q", got)
	}
	alice.ReadUntil(t, "or ABSTAIN: ")
	bob.ReadUntil(t, "or ABSTAIN: ")

	alice.Send(t, "2,1")
	alice.ReadUntil(t, "Waiting for polls to open...")
	bob.Send(t, "9")
	bob.ReadUntil(t, "or ABSTAIN: ")
	bob.Send(t, "Dana")
	bob.ReadUntil(t, "Waiting for polls to open...")

	// Step 3
	var results string
	testutil.Eventually(t, func() bool {
		results = s.do("results chair")
		return strings.Contains(results, "chair: 2 ballots")
	}, "both ballots counted")
	if !strings.Contains(results, "1st. B, Dana") {
		t.Errorf("Step 3 - expected a tie between B and Dana:\n%s", results)
	}

	history := s.do("history chair")
	if strings.Count(history, "\n") < 1 || !strings.Contains(history, "irv") {
		t.Errorf("Step 3 - results were not archived:\n%s", history)
	}

	// Step 4
	if got := s.do("revote chair"); got != "Reopened chair for a revote (round 2)\n" {
		t.Fatalf("Step 4 - revote failed: %q", got)
	}
	if got := s.do("results chair"); !strings.HasPrefix(got, "chair: 0 ballots\n") {
		t.Errorf("Step 4 - tally not cleared:\n%s", got)
	}
	alice.ReadUntil(t, "or ABSTAIN: ")
	bob.ReadUntil(t, "or ABSTAIN: ")
	alice.Send(t, "ABSTAIN")
	alice.ReadUntil(t, "Waiting for polls to open...")

	// Step 5
	bob.Send(t, "3")
	bob.ReadUntil(t, "Waiting for polls to open...")
	if got := s.do("kick 1"); got != "Kicked 1\n" {
		t.Errorf("Step 5 - kick failed: %q", got)
	}
	bob.ReadUntil(t, "Polling is over. Thanks for voting!")

	if got := s.do("exit"); got != "Shutting down...\n" || !s.stopped {
		t.Errorf("Step 5 - exit did not stop the console: %q", got)
	}
}
