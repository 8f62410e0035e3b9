// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Dispatcher runs one command line
type Dispatcher interface {
	Dispatch(ctx context.Context, w io.Writer, line string)
}

// IsTerminal reports whether r is an interactive terminal
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run reads commands from in until EOF or ctx is done. Commands run one at
// a time on the calling goroutine. The "> " prompt is shown when prompt
// is set.
func Run(ctx context.Context, in io.Reader, out io.Writer, d Dispatcher, prompt bool) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if prompt {
			fmt.Fprint(out, "> ")
		}

		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if prompt {
				fmt.Fprintln(out)
			}
			return err
		case line := <-lines:
			d.Dispatch(ctx, out, line)
		}
	}
}
