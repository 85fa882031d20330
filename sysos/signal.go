package sysos

import (
	"sync"
	"time"
)

// Signal is a condition-variable-plus-int primitive, per spec.md §4.A:
// the integer value is mutated only under the signal's own lock, and
// waiters block on a predicate over that value.
type Signal struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value int32
}

// NewSignal creates a Signal with value 0.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Raise wakes exactly one waiter (if any are currently blocked).
func (s *Signal) Raise() { s.cond.Signal() }

// RaiseAll wakes every waiter.
func (s *Signal) RaiseAll() { s.cond.Broadcast() }

// Set overwrites the value and wakes all waiters to re-check their predicate.
func (s *Signal) Set(v int32) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Increment adds 1 to the value.
func (s *Signal) Increment() {
	s.mu.Lock()
	s.value++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Decrement subtracts 1 from the value.
func (s *Signal) Decrement() {
	s.mu.Lock()
	s.value--
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Value returns the current value.
func (s *Signal) Value() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Wait blocks until the value becomes non-zero, then resets it to
// zero atomically with the wake, per spec.md §4.A. A negative timeout
// waits indefinitely.
func (s *Signal) Wait(timeout time.Duration) bool {
	ok := s.WaitOnCondition(func(v, ref int32) bool { return v == ref }, 0, timeout)
	if ok {
		s.mu.Lock()
		s.value = 0
		s.mu.Unlock()
	}
	return ok
}

// WaitOnCondition blocks while pred(value, reference) holds, waking on
// every Set/Increment/Decrement/Raise to re-check. Returns false if
// timeout elapses first. A negative timeout waits indefinitely.
func (s *Signal) WaitOnCondition(pred func(value, reference int32) bool, reference int32, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout < 0 {
		for pred(s.value, reference) {
			s.cond.Wait()
		}
		return true
	}

	deadline := time.Now().Add(timeout)
	for pred(s.value, reference) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if !s.timedWait(remaining) {
			return false
		}
	}
	return true
}

// timedWait waits on the condition variable for at most d, returning
// false if it fired due to the timeout rather than a wakeup. Must be
// called with s.mu held; re-acquires it before returning, matching
// sync.Cond.Wait's contract.
func (s *Signal) timedWait(d time.Duration) bool {
	woken := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		close(woken)
		s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer timer.Stop()

	s.cond.Wait()

	select {
	case <-woken:
		return false
	default:
		return true
	}
}
