// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"fmt"

	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
)

// clearScreen erases the terminal and homes the cursor
const clearScreen = "\x1b[2J\x1b[H"

func (s *Session) clearAndBanner() {
	fmt.Fprint(s.out, clearScreen)
	if s.env.Banner != "" {
		fmt.Fprint(s.out, s.env.Banner)
	}
}

// message redraws the screen with a single message
func (s *Session) message(msg string) error {
	s.clearAndBanner()
	fmt.Fprintf(s.out, "\n%s\n", msg)
	return s.flush()
}

func (s *Session) renderPoll(def polls.Definition) {
	s.clearAndBanner()
	fmt.Fprintln(s.out)

	if def.Question != "" {
		fmt.Fprintf(s.out, "%s\n\n", def.Question)
	}
	if def.Title != "" {
		fmt.Fprintf(s.out, "Please select your vote for \"%s\".\n\n", def.Title)
	}
	if def.Note != "" {
		fmt.Fprintf(s.out, "%s\n\n", def.Note)
	}

	if !def.HasOptions() {
		return
	}

	for i, opt := range def.Options {
		fmt.Fprintf(s.out, "    %d) %s\n", i+1, opt)
	}
	fmt.Fprintln(s.out)

	switch def.Kind {
	case models.KindRanked:
		fmt.Fprintln(s.out, "You may rank multiple options separated by commas. (e.g. 1,3,5)")
	case models.KindMultiChoice:
		fmt.Fprintln(s.out, "You may select multiple options separated by commas. (e.g. 1,3,5)")
	}
}

func prompt(def polls.Definition) string {
	if def.Kind == models.KindYesNo {
		return "Type YES, NO, or ABSTAIN: "
	}
	if len(def.Options) == 0 {
		return "Type your write-in response, or ABSTAIN: "
	}

	plural := ""
	if def.Kind == models.KindRanked || def.Kind == models.KindMultiChoice {
		plural = "(s)"
	}
	writeIn := ""
	if def.WriteIn {
		writeIn = ", write-in a response"
	}
	return fmt.Sprintf("Type the number%s you want%s, or ABSTAIN: ", plural, writeIn)
}
