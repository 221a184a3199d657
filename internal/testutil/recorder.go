package testutil

import (
	"sync"
	"testing"
	"time"
)

// Recorder collects values delivered from other goroutines.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
	signal chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{signal: make(chan struct{}, 1)}
}

// Add appends v. Safe to pass directly as a callback.
func (r *Recorder[T]) Add(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// All returns a copy of everything recorded so far.
func (r *Recorder[T]) All() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// Last returns the most recent value and whether there was one.
func (r *Recorder[T]) Last() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if len(r.values) == 0 {
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// WaitFor blocks until the latest recorded value satisfies ok, failing the
// test after two seconds.
func (r *Recorder[T]) WaitFor(t *testing.T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if v, found := r.Last(); found && ok(v) {
			return v
		}
		select {
		case <-r.signal:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			v, _ := r.Last()
			t.Fatalf("condition not met before timeout; last value: %+v", v)
			return v
		}
	}
}

// Eventually polls cond until it holds, failing the test after two
// seconds.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: %s", msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
