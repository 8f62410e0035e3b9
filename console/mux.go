// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package console

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Request is one parsed operator command
type Request struct {
	Command string
	Args    []string

	ctx    context.Context
	params map[string]string
}

// Context returns the context the command runs under
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Arg returns the named argument of the command pattern
func (r *Request) Arg(name string) string {
	return r.params[name]
}

// NewRequest builds a request for pattern pat from a command line. Used to call
// handlers directly.
func NewRequest(ctx context.Context, pat, line string) *Request {
	p := parsePattern(pat)
	fields := strings.Fields(line)
	r := &Request{ctx: ctx, params: make(map[string]string)}
	if len(fields) > 0 {
		r.Command = fields[0]
		r.Args = fields[1:]
	}
	for i, name := range p.params {
		if i < len(r.Args) {
			r.params[name] = r.Args[i]
		}
	}
	return r
}

// HandlerFunc runs one command and writes its output to w
type HandlerFunc func(w io.Writer, r *Request)

type pattern struct {
	name   string
	params []string
}

func parsePattern(s string) pattern {
	fields := strings.Fields(s)
	p := pattern{name: fields[0]}
	for _, f := range fields[1:] {
		p.params = append(p.params, strings.Trim(f, "{}"))
	}
	return p
}

func (p pattern) usage() string {
	var b strings.Builder
	b.WriteString(p.name)
	for _, name := range p.params {
		fmt.Fprintf(&b, " <%s>", name)
	}
	return b.String()
}

type route struct {
	pattern pattern
	summary string
	handler HandlerFunc
}

// Mux dispatches command lines to handlers by their first word.
// Patterns name positional arguments in braces: "kick {id}".
type Mux struct {
	routes map[string]route
	order  []string
}

func NewMux() *Mux {
	return &Mux{routes: make(map[string]route)}
}

// HandleFunc registers handler for pattern. summary is shown by Help.
func (m *Mux) HandleFunc(pat, summary string, handler HandlerFunc) {
	p := parsePattern(pat)
	if _, dup := m.routes[p.name]; dup {
		panic("console: multiple registrations for " + p.name)
	}
	m.routes[p.name] = route{pattern: p, summary: summary, handler: handler}
	m.order = append(m.order, p.name)
}

// Dispatch runs the command on line. Blank lines are ignored. Unknown
// commands and wrong argument counts print a usage line.
func (m *Mux) Dispatch(ctx context.Context, w io.Writer, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	rt, ok := m.routes[fields[0]]
	if !ok {
		fmt.Fprintf(w, "unknown command %q, try help\n", fields[0])
		return
	}
	if len(fields)-1 != len(rt.pattern.params) {
		fmt.Fprintf(w, "usage: %s\n", rt.pattern.usage())
		return
	}

	r := &Request{
		Command: fields[0],
		Args:    fields[1:],
		ctx:     ctx,
		params:  make(map[string]string, len(rt.pattern.params)),
	}
	for i, name := range rt.pattern.params {
		r.params[name] = r.Args[i]
	}
	rt.handler(w, r)
}

// Help writes one usage line per command in registration order
func (m *Mux) Help(w io.Writer, _ *Request) {
	width := 0
	for _, name := range m.order {
		width = max(width, len(m.routes[name].pattern.usage()))
	}
	for _, name := range m.order {
		rt := m.routes[name]
		fmt.Fprintf(w, "  %-*s  %s\n", width, rt.pattern.usage(), rt.summary)
	}
}
