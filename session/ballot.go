// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/voteserver/models"
	"github.com/danielhkuo/voteserver/polls"
)

// ParseResult is the outcome of parsing one ballot line: a choice, or the
// reason the line was rejected
type ParseResult struct {
	Choice models.Choice
	Reason string
}

// OK reports whether the line was accepted
func (r ParseResult) OK() bool {
	return r.Choice != nil
}

func accept(c models.Choice) ParseResult { return ParseResult{Choice: c} }

func reject(format string, args ...any) ParseResult {
	return ParseResult{Reason: fmt.Sprintf(format, args...)}
}

// ParseBallot validates one input line against the poll's grammar.
//
// Yes/no polls take exactly YES, NO or ABSTAIN. Other polls take a comma
// separated list where numbers pick listed options, ABSTAIN must stand alone,
// and any other text is a write-in if the poll allows them. Single choice
// polls take one answer.
func ParseBallot(def polls.Definition, line string) ParseResult {
	line = strings.TrimSpace(line)

	if def.Kind == models.KindYesNo {
		switch line {
		case models.Yes, models.No, models.Abstain:
			return accept(models.Label(line))
		}
		return reject("expected YES, NO or ABSTAIN")
	}

	tokens := dedupe(splitTokens(line))
	if len(tokens) == 0 {
		return reject("empty answer")
	}

	labels := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		label, reason := resolve(def, tok, len(tokens))
		if reason != "" {
			return reject("%s", reason)
		}
		labels = append(labels, label)
	}
	// "1" and the label it stands for are the same answer
	labels = dedupe(labels)

	switch def.Kind {
	case models.KindSingleChoice:
		if len(labels) != 1 {
			return reject("pick exactly one answer")
		}
		return accept(models.Label(labels[0]))
	case models.KindMultiChoice:
		return accept(models.NewSelection(labels...))
	case models.KindRanked:
		return accept(models.Ranking(labels))
	default:
		return reject("unsupported poll kind %v", def.Kind)
	}
}

func resolve(def polls.Definition, tok string, count int) (string, string) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n < 1 || n > len(def.Options) {
			return "", fmt.Sprintf("option %d is not on the list", n)
		}
		return def.Options[n-1], ""
	}

	if tok == models.Abstain {
		if count > 1 {
			return "", "ABSTAIN must be the only answer"
		}
		return models.Abstain, ""
	}

	if !def.WriteIn {
		return "", fmt.Sprintf("%q is not an option number", tok)
	}
	if strings.ContainsFunc(tok, unicode.IsControl) {
		return "", "write-ins cannot contain control characters"
	}
	return norm.NFC.String(tok), ""
}

// splitTokens splits on commas, trims and drops empty tokens
func splitTokens(line string) []string {
	var tokens []string
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// dedupe keeps the first occurrence of each token, in order
func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
