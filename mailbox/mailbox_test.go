// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPushPopOrder(t *testing.T) {
	mb := New[int]()
	for i := 0; i < 100; i++ {
		mb.Push(i)
	}

	if mb.Len() != 100 {
		t.Fatalf("Expected 100 queued items, got %d", mb.Len())
	}

	for i := 0; i < 100; i++ {
		v, err := mb.Pop(context.Background())
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if v != i {
			t.Errorf("Expected %d, got %d", i, v)
		}
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	mb := New[string]()
	got := make(chan string, 1)

	go func() {
		v, err := mb.Pop(context.Background())
		if err != nil {
			t.Errorf("Pop failed: %v", err)
		}
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("Pop returned %q before anything was pushed", v)
	case <-time.After(20 * time.Millisecond):
	}

	mb.Push("hello")

	select {
	case v := <-got:
		if v != "hello" {
			t.Errorf("Expected hello, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestPopHonorsContext(t *testing.T) {
	mb := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mb.Pop(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestPushUnless(t *testing.T) {
	mb := New[string]()
	same := func(v string) func(string) bool {
		return func(q string) bool { return q == v }
	}

	if !mb.PushUnless("a", same("a")) {
		t.Error("First push of a should be queued")
	}
	if mb.PushUnless("a", same("a")) {
		t.Error("Second push of a should be skipped while a is pending")
	}
	if !mb.PushUnless("b", same("b")) {
		t.Error("Push of b should be queued")
	}

	v, _ := mb.TryPop()
	if v != "a" {
		t.Fatalf("Expected a, got %q", v)
	}
	if !mb.PushUnless("a", same("a")) {
		t.Error("a should be queued again once the earlier copy was consumed")
	}
	if mb.Len() != 2 {
		t.Errorf("Expected 2 queued items, got %d", mb.Len())
	}
}

func TestConcurrentProducers(t *testing.T) {
	mb := New[int]()
	const producers, perProducer = 8, 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				mb.Push(p*perProducer + i)
			}
		}(p)
	}

	seen := make(map[int]bool)
	lastPerProducer := make(map[int]int)
	for len(seen) < producers*perProducer {
		v, err := mb.Pop(context.Background())
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if seen[v] {
			t.Fatalf("Value %d delivered twice", v)
		}
		seen[v] = true

		// Items from one producer keep their relative order
		p := v / perProducer
		if last, ok := lastPerProducer[p]; ok && v < last {
			t.Errorf("Producer %d out of order: %d after %d", p, v, last)
		}
		lastPerProducer[p] = v
	}
	wg.Wait()
}
