package sysos

import (
	"sync"
	"sync/atomic"
)

const defaultSpinCount = 4000

// Mutex is a recursive lock with a tunable spin-before-block count, per
// spec.md §4.A. Recursion detection relies on CurrentID (real kernel
// TIDs on Linux, where workers are pinned via Thread); on platforms
// where CurrentID is unsupported, Mutex degrades to a plain
// non-recursive lock — re-entering from the same logical owner there
// deadlocks, exactly as a plain mutex would.
//
// owner/ownerSet are read by Enter/TryEnter's fast path before the
// calling goroutine holds mu, racing claim()'s writes from whichever
// goroutine currently does hold it; they are atomics for that reason.
// depth is touched only by the owning goroutine between claim() and
// the matching Exit(), so it needs no synchronization of its own.
type Mutex struct {
	spinCount int
	mu        sync.Mutex
	owner     atomic.Int32
	ownerSet  atomic.Bool
	depth     int
}

// NewMutex creates a Mutex. spinCount <= 0 uses the default (~4000).
func NewMutex(spinCount int) *Mutex {
	if spinCount <= 0 {
		spinCount = defaultSpinCount
	}
	return &Mutex{spinCount: spinCount}
}

// Enter acquires the mutex, recursively if already held by this thread.
func (m *Mutex) Enter() {
	if tid, ok := CurrentID(); ok && m.ownerSet.Load() && m.owner.Load() == tid {
		m.depth++
		return
	}
	for i := 0; i < m.spinCount; i++ {
		if m.mu.TryLock() {
			m.claim()
			return
		}
		Yield()
	}
	m.mu.Lock()
	m.claim()
}

// TryEnter attempts to acquire the mutex without blocking.
func (m *Mutex) TryEnter() bool {
	if tid, ok := CurrentID(); ok && m.ownerSet.Load() && m.owner.Load() == tid {
		m.depth++
		return true
	}
	if m.mu.TryLock() {
		m.claim()
		return true
	}
	return false
}

// Exit releases one level of recursion, unlocking once depth reaches zero.
func (m *Mutex) Exit() {
	m.depth--
	if m.depth > 0 {
		return
	}
	m.ownerSet.Store(false)
	m.mu.Unlock()
}

func (m *Mutex) claim() {
	if tid, ok := CurrentID(); ok {
		m.owner.Store(tid)
		m.ownerSet.Store(true)
	}
	m.depth = 1
}
