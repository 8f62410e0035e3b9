// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"fmt"
	"slices"
	"sync"

	"github.com/danielhkuo/voteserver/models"
)

// Definition is the configuration of one poll
type Definition struct {
	Name     string
	Question string
	Title    string
	Note     string
	Kind     models.PollKind
	Options  []string
	WriteIn  bool
}

// HasOptions reports whether ballots pick from an option list
func (d Definition) HasOptions() bool {
	return d.Kind != models.KindYesNo
}

func (d Definition) clone() Definition {
	d.Options = slices.Clone(d.Options)
	return d
}

// Registry holds poll definitions and the set of open polls.
// Writes come from operator commands; sessions read concurrently.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	defs   map[string]Definition
	open   []string // insertion order
	rounds map[string]int
}

// NewRegistry creates a registry; definitions keep their given order
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{
		defs:   make(map[string]Definition, len(defs)),
		rounds: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if _, dup := r.defs[d.Name]; !dup {
			r.order = append(r.order, d.Name)
		}
		r.defs[d.Name] = d.clone()
	}
	return r
}

// Names returns all poll names in configuration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Lookup returns a copy of the named poll's definition
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// IsOpen reports whether the poll currently accepts ballots
func (r *Registry) IsOpen(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.open, name)
}

// OpenPolls returns the open polls in the order they were opened
func (r *Registry) OpenPolls() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.open)
}

// Round returns how many times the poll has been opened and whether it is
// open now
func (r *Registry) Round(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rounds[name], slices.Contains(r.open, name)
}

// Open adds the poll to the open set and starts a new round
func (r *Registry) Open(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[name]; !ok {
		return 0, fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}
	if slices.Contains(r.open, name) {
		return 0, fmt.Errorf("%w '%s'", models.ErrPollAlreadyOpen, name)
	}

	r.open = append(r.open, name)
	r.rounds[name]++
	return r.rounds[name], nil
}

// Close removes the poll from the open set
func (r *Registry) Close(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[name]; !ok {
		return fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}
	i := slices.Index(r.open, name)
	if i < 0 {
		return fmt.Errorf("%w '%s'", models.ErrPollNotOpen, name)
	}
	r.open = slices.Delete(r.open, i, i+1)
	return nil
}

// RemoveOption deletes the option at the 1-based index. Ballots already cast
// for it are kept.
func (r *Registry) RemoveOption(name string, index int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("%w '%s'", models.ErrUnknownPoll, name)
	}
	if !d.HasOptions() || len(d.Options) == 0 {
		return "", models.ErrNoOptions
	}
	if index < 1 || index > len(d.Options) {
		return "", models.ErrOptionOutOfRange
	}

	removed := d.Options[index-1]
	// Copy so definitions handed out earlier keep their option list
	d.Options = slices.Delete(slices.Clone(d.Options), index-1, index)
	r.defs[name] = d
	return removed, nil
}
