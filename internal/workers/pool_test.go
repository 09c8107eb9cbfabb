package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPoolFailuresAreCountedNotFatal(t *testing.T) {
	render := func(_ context.Context, _, _ string) error {
		return errors.New("render always fails")
	}
	pool := NewPool(2, 10, render)
	defer pool.Shutdown(true)

	for i := 0; i < 10; i++ {
		if !pool.Enqueue(Job{SourcePath: fmt.Sprintf("clip%d.mp4", i)}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	pool.Drain()

	stats := pool.Stats()
	if stats.Completed != 0 {
		t.Errorf("completed = %d, want 0", stats.Completed)
	}
	if stats.Failed != 10 {
		t.Errorf("failed = %d, want 10", stats.Failed)
	}
	if stats.Pending != 0 || stats.InFlight != 0 {
		t.Errorf("pending = %d, in flight = %d, want 0/0", stats.Pending, stats.InFlight)
	}
}

func TestPoolCompletesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	render := func(_ context.Context, src, _ string) error {
		mu.Lock()
		seen[src] = true
		mu.Unlock()
		return nil
	}
	pool := NewPool(3, 20, render)
	defer pool.Shutdown(true)

	for i := 0; i < 15; i++ {
		pool.Enqueue(Job{SourcePath: fmt.Sprintf("clip%d.mp4", i)})
	}
	pool.Drain()

	if stats := pool.Stats(); stats.Completed != 15 {
		t.Errorf("completed = %d, want 15", stats.Completed)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 15 {
		t.Errorf("rendered %d distinct jobs, want 15", len(seen))
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	render := func(ctx context.Context, _, _ string) error {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return nil
	}
	pool := NewPool(1, 10, render)
	defer func() {
		close(gate)
		pool.Shutdown(true)
	}()

	// One job held by the blocked worker, ten filling the queue.
	if !pool.Enqueue(Job{SourcePath: "held.mp4"}) {
		t.Fatal("first enqueue rejected")
	}
	waitFor(t, time.Second, func() bool { return pool.Stats().InFlight == 1 })

	for i := 0; i < 10; i++ {
		if !pool.Enqueue(Job{SourcePath: fmt.Sprintf("queued%d.mp4", i)}) {
			t.Fatalf("enqueue %d rejected with queue space left", i)
		}
	}

	if pool.Enqueue(Job{SourcePath: "overflow.mp4"}) {
		t.Error("enqueue succeeded on a full queue")
	}
	if stats := pool.Stats(); stats.Pending != 10 {
		t.Errorf("pending = %d, want 10", stats.Pending)
	}
}

func TestPoolCallbackRuns(t *testing.T) {
	render := func(_ context.Context, src, _ string) error {
		if src == "bad.mp4" {
			return errors.New("boom")
		}
		return nil
	}
	pool := NewPool(1, 10, render)
	defer pool.Shutdown(true)

	results := make(chan error, 2)
	pool.Enqueue(Job{SourcePath: "good.mp4", Callback: func(err error) { results <- err }})
	pool.Enqueue(Job{SourcePath: "bad.mp4", Callback: func(err error) { results <- err }})
	pool.Drain()

	var errs int
	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			if err != nil {
				errs++
			}
		case <-time.After(time.Second):
			t.Fatal("callback never ran")
		}
	}
	if errs != 1 {
		t.Errorf("got %d callback errors, want 1", errs)
	}
}

func TestPoolCallbackPanicDoesNotKillWorker(t *testing.T) {
	render := func(_ context.Context, _, _ string) error { return nil }
	pool := NewPool(1, 10, render)
	defer pool.Shutdown(true)

	pool.Enqueue(Job{SourcePath: "a.mp4", Callback: func(error) { panic("callback bug") }})
	pool.Enqueue(Job{SourcePath: "b.mp4"})
	pool.Drain()

	if stats := pool.Stats(); stats.Completed != 2 {
		t.Errorf("completed = %d, want 2", stats.Completed)
	}
}

func TestPoolShutdownIdempotent(t *testing.T) {
	pool := NewPool(2, 10, func(_ context.Context, _, _ string) error { return nil })

	if !pool.Stats().Running {
		t.Error("pool not reported running before shutdown")
	}

	pool.Enqueue(Job{SourcePath: "a.mp4"})
	pool.Shutdown(true)

	if pool.Stats().Running {
		t.Error("pool reported running after shutdown")
	}
	pool.Shutdown(true)
	pool.Shutdown(false)

	if pool.Enqueue(Job{SourcePath: "late.mp4"}) {
		t.Error("enqueue accepted after shutdown")
	}
	if stats := pool.Stats(); stats.Completed != 1 {
		t.Errorf("completed = %d, want 1", stats.Completed)
	}
}

func TestPoolForceShutdownFinishesCurrentJobDiscardsQueued(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	render := func(_ context.Context, src, _ string) error {
		if src == "held.mp4" {
			close(started)
			<-gate
		}
		return nil
	}
	pool := NewPool(1, 10, render)

	pool.Enqueue(Job{SourcePath: "held.mp4"})
	<-started
	for i := 0; i < 5; i++ {
		pool.Enqueue(Job{SourcePath: fmt.Sprintf("queued%d.mp4", i)})
	}

	// Start the force shutdown while the worker is mid-render, then release
	// the held job only after the pool has stopped accepting work.
	done := make(chan struct{})
	go func() {
		pool.Shutdown(false)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return !pool.Stats().Running })
	close(gate)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	stats := pool.Stats()
	// The job already being rendered runs to completion.
	if stats.Completed != 1 {
		t.Errorf("completed = %d, want 1", stats.Completed)
	}
	if stats.Failed != 0 {
		t.Errorf("failed = %d, want 0", stats.Failed)
	}
	if stats.Pending != 0 {
		t.Errorf("pending = %d, want 0 after force shutdown", stats.Pending)
	}
}
