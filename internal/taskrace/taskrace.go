// Package taskrace races an asynchronous task against a deadline and
// reports which side settled first as a tagged outcome. The losing
// side's eventual result is discarded, which is what lets callers keep
// a single resolution per activation instead of juggling timers and
// already-resolved flags.
package taskrace

import (
	"context"
	"time"
)

// Status tags the outcome of a raced task.
type Status int

const (
	Resolved Status = iota
	TimedOut
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case TimedOut:
		return "timed out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Outcome carries the task's value and error only when Status is
// Resolved; for TimedOut and Cancelled both are zero.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Run executes fn in its own goroutine and waits for the first of:
// fn settling, the timeout firing, or ctx being cancelled. fn receives
// a context that is cancelled once the race is decided, so a losing
// task can stop early, but Run never waits for it to do so.
func Run[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) Outcome[T] {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn(runCtx)
		done <- result{value: value, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return Outcome[T]{Status: Resolved, Value: r.value, Err: r.err}
	case <-timer.C:
		return Outcome[T]{Status: TimedOut}
	case <-ctx.Done():
		return Outcome[T]{Status: Cancelled}
	}
}
