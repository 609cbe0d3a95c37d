// Package throttle collapses bursts of calls into a leading call plus a
// single deferred trailing call.
package throttle

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultInterval is used when New is given a zero interval.
var DefaultInterval = 250 * time.Millisecond

// Option configures a Throttle.
type Option func(*options)

type options struct {
	dispatch func(func())
}

// WithDispatch runs deferred executions through d instead of on the timer's
// goroutine, typically to marshal them back onto an event loop.
func WithDispatch(d func(func())) Option {
	return func(o *options) {
		o.dispatch = d
	}
}

// Throttle wraps fn so that at most one execution happens per interval
// during a burst, and the final call of a burst is never dropped.
type Throttle[T any] struct {
	clock    clock.WithDelayedExecution
	interval time.Duration
	fn       func(T)
	dispatch func(func())

	mu      sync.Mutex
	called  bool
	last    time.Time
	pending clock.Timer
	seq     uint64
	fired   uint64
}

// New returns a Throttle for fn.
func New[T any](c clock.WithDelayedExecution, interval time.Duration, fn func(T), opts ...Option) *Throttle[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	o := &options{dispatch: func(f func()) { f() }}
	for _, opt := range opts {
		opt(o)
	}
	return &Throttle[T]{
		clock:    c,
		interval: interval,
		fn:       fn,
		dispatch: o.dispatch,
	}
}

// Call runs fn now, or defers it to interval after this call if the last
// execution was too recent. A deferred call replaces any earlier deferred
// call that has not fired yet.
func (t *Throttle[T]) Call(arg T) {
	now := t.clock.Now()

	t.mu.Lock()
	if t.called && now.Before(t.last.Add(t.interval)) {
		prev := t.pending
		t.pending = nil
		t.seq++
		seq := t.seq
		t.mu.Unlock()

		if prev != nil {
			prev.Stop()
		}

		// The timer callback must not touch the clock: fake clocks run it
		// while holding their own lock.
		timer := t.clock.AfterFunc(t.interval, func() {
			t.dispatch(func() { t.fire(seq, now, arg) })
		})

		t.mu.Lock()
		if t.seq == seq && t.fired != seq {
			t.pending = timer
		}
		t.mu.Unlock()
		return
	}

	t.called = true
	t.last = now
	t.mu.Unlock()

	t.fn(arg)
}

func (t *Throttle[T]) fire(seq uint64, at time.Time, arg T) {
	t.mu.Lock()
	if seq != t.seq {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.fired = seq
	t.last = at
	t.mu.Unlock()

	t.fn(arg)
}

// Stop cancels a pending deferred call, if any.
func (t *Throttle[T]) Stop() {
	t.mu.Lock()
	prev := t.pending
	t.pending = nil
	t.seq++
	t.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
}

// Pending reports whether a deferred call is scheduled.
func (t *Throttle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
