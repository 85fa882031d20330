package sysos

import (
	"context"
	"math"
	"time"
)

// Semaphore is a counting semaphore with timed waits, per spec.md §4.A.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore creates a semaphore with zero initial permits.
func NewSemaphore() *Semaphore {
	return &Semaphore{ch: make(chan struct{}, math.MaxInt32)}
}

// Post releases count permits.
func (s *Semaphore) Post(count int) {
	for i := 0; i < count; i++ {
		s.ch <- struct{}{}
	}
}

// Wait blocks until a permit is available or timeout elapses; a
// negative timeout waits indefinitely. Returns false on timeout.
func (s *Semaphore) Wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-s.ch
		return true
	}
	select {
	case <-s.ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// WaitContext blocks until a permit is available or ctx is done,
// whichever comes first. The scheduler's workers call it with
// context.Background(), so they leave the wait on shutdown only through
// the one permit per worker that Release posts (spec.md §4.J).
func (s *Semaphore) WaitContext(ctx context.Context) bool {
	select {
	case <-s.ch:
		return true
	case <-ctx.Done():
		return false
	}
}
