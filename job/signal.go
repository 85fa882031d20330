package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/septag/junkyard-core/sysos"
)

// Signal is JobSignal from spec.md §4.K: a value a producer can Raise
// and consumers can Wait on, either by plain value comparison or by an
// arbitrary predicate. A fiber-bound waiter suspends cooperatively
// instead of spinning, so a single OS thread can host many blocked
// waiters.
type Signal struct {
	mu    sync.Mutex
	value int32

	// raised flips true on every Raise and is consumed exactly once by
	// TryConsume, which is what lets Signal satisfy fiber.Waitable
	// without racing a second waiter's view of value.
	raised atomic.Bool
}

// NewSignal returns a Signal with an initial value of 0.
func NewSignal() *Signal { return &Signal{} }

// Set overwrites the value without marking the signal raised.
func (s *Signal) Set(v int32) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

// Value returns the current value.
func (s *Signal) Value() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Increment adds delta to the value and raises the signal.
func (s *Signal) Increment(delta int32) {
	s.mu.Lock()
	s.value += delta
	s.mu.Unlock()
	s.Raise()
}

// Decrement subtracts delta from the value and raises the signal.
func (s *Signal) Decrement(delta int32) {
	s.Increment(-delta)
}

// Raise marks the signal as having new state for waiters to inspect.
func (s *Signal) Raise() {
	s.raised.Store(true)
}

// TryConsume implements fiber.Waitable: it reports whether the signal
// has been raised since the last successful consume, clearing the flag
// atomically so two racing consumers can't both see the same raise.
func (s *Signal) TryConsume() bool {
	return s.raised.CompareAndSwap(true, false)
}

// Wait blocks until the value equals target, or timeout elapses
// (<=0 means wait forever). It returns false on timeout.
func (s *Signal) Wait(ctx context.Context, target int32, timeout time.Duration) bool {
	return s.WaitOnCondition(ctx, func(v int32) bool { return v == target }, timeout)
}

// WaitRaised blocks until Raise has been called at least once since
// the last successful consume (by this or any other waiter), or
// timeout elapses. Unlike Wait/WaitOnCondition this ignores Value
// entirely — it is the plain event-notification use of a Signal.
func (s *Signal) WaitRaised(ctx context.Context, timeout time.Duration) bool {
	return s.WaitOnConsume(ctx, timeout)
}

// WaitOnConsume is WaitRaised's implementation, split out so
// WaitOnCondition (value-based) and this (event-based) share the same
// fiber-suspend-vs-spin structure without duplicating it per caller.
// Inside a fiber the deadline is checked only when the fiber is resumed,
// which happens after a Raise; without one the wait does not time out.
func (s *Signal) WaitOnConsume(ctx context.Context, timeout time.Duration) bool {
	var deadline time.Time
	hasDeadline := timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}

	if fib, ok := currentFiber(ctx); ok {
		for {
			if s.TryConsume() {
				return true
			}
			if hasDeadline && time.Now().After(deadline) {
				return false
			}
			fib.SignalWaited = s
			fib.Suspend()
			fib.SignalWaited = nil
		}
	}

	for {
		if s.TryConsume() {
			return true
		}
		if hasDeadline && time.Now().After(deadline) {
			return false
		}
		sysos.Sleep(1)
	}
}

// WaitOnCondition blocks until pred(Value()) holds, or timeout
// elapses. Called from inside a fiber's own callback, it suspends that
// fiber cooperatively instead of burning a worker thread; called from
// a plain goroutine, it polls with a short sleep. Inside a fiber both
// pred and the deadline are re-checked only when the fiber is resumed,
// which happens after a Raise; without one the wait does not time out.
func (s *Signal) WaitOnCondition(ctx context.Context, pred func(int32) bool, timeout time.Duration) bool {
	var deadline time.Time
	hasDeadline := timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}

	if fib, ok := currentFiber(ctx); ok {
		for {
			if pred(s.Value()) {
				return true
			}
			if hasDeadline && time.Now().After(deadline) {
				return false
			}
			fib.SignalWaited = s
			fib.Suspend()
			fib.SignalWaited = nil
		}
	}

	for {
		if pred(s.Value()) {
			return true
		}
		if hasDeadline && time.Now().After(deadline) {
			return false
		}
		sysos.Sleep(1)
	}
}
