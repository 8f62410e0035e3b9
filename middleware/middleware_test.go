// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/danielhkuo/voteserver/console"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that writes output
	handlerCalled := false
	testHandler := func(w io.Writer, r *console.Request) {
		handlerCalled = true
		fmt.Fprint(w, "success")
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	var out bytes.Buffer
	wrappedHandler(&out, console.NewRequest(context.Background(), "who", "who"))

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify output was written correctly
	if out.String() != "success" {
		t.Errorf("Expected output 'success', got '%s'", out.String())
	}
}

func TestErrorResponse(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRequest(context.Background(), "kick {id}", "kick 7")

	ErrorResponse(&out, r, errors.New("session id unknown"))

	if out.String() != "kick: session id unknown\n" {
		t.Errorf("Unexpected error line %q", out.String())
	}
}

func TestJSONResponse(t *testing.T) {
	var out bytes.Buffer
	JSONResponse(&out, map[string]int{"votes": 3})

	var decoded map[string]int
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if decoded["votes"] != 3 {
		t.Errorf("Expected votes 3, got %d", decoded["votes"])
	}
}

func TestTable(t *testing.T) {
	var out bytes.Buffer
	tw := Table(&out)
	fmt.Fprintf(tw, "%s\t%s\n", "0", "Alice")
	fmt.Fprintf(tw, "%s\t%s\n", "12", "Bob")
	tw.Flush()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", out.String())
	}
	if strings.Index(lines[0], "Alice") != strings.Index(lines[1], "Bob") {
		t.Errorf("Columns not aligned:\n%s", out.String())
	}
}

func TestIntArg(t *testing.T) {
	testCases := []struct {
		line    string
		want    int
		wantErr bool
	}{
		{"kick 3", 3, false},
		{"kick -1", -1, false},
		{"kick three", 0, true},
		{"kick 1.5", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			r := console.NewRequest(context.Background(), "kick {id}", tc.line)
			got, err := IntArg(r, "id")
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error=%v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}
