// Package atomicpool implements the fixed-capacity lock-free free list
// of spec.md §4.G, used by the scheduler to hand out JobInstance and
// FiberProps values without an allocator call on the dispatch hot
// path. Storage is a single Go-heap-backed slice of T (the "single
// allocation" spec.md's Design Notes call for, rather than the
// {ptrs[N], storage[N]} combined-buffer layout memory.SingleShotMalloc
// builds for raw-byte allocators: a pool of *T needs the Go GC to keep
// tracking those pointers, which a manually carved []byte region would
// not allow).
package atomicpool

import (
	"fmt"
	"sync/atomic"
)

// Pool is a fixed-capacity lock-free object pool of *T. New/Delete are
// single atomic adds against index; storage slots have stable
// addresses for the pool's lifetime.
type Pool[T any] struct {
	storage []T
	slots   []*T
	index   atomic.Int32 // high-water mark into slots; New pops, Delete pushes
	n       int32
}

// New creates a pool with capacity n. Every slot's backing T is
// pre-allocated up front, matching spec.md §4.G's "single allocation,
// N freelist entries, N storage entries".
func New[T any](n int) *Pool[T] {
	p := &Pool[T]{
		storage: make([]T, n),
		slots:   make([]*T, n),
		n:       int32(n),
	}
	for i := range p.storage {
		p.slots[i] = &p.storage[i]
	}
	p.index.Store(int32(n))
	return p
}

// Acquire returns a pointer to a free T, or nil if the pool is
// exhausted (spec.md §4.G treats exhaustion as a fatal assert at the
// call site that owns sizing, i.e. the scheduler; this package itself
// just reports failure so that contract can be enforced there with a
// component-specific message).
func (p *Pool[T]) Acquire() *T {
	idx := p.index.Add(-1)
	if idx < 0 {
		p.index.Add(1) // undo; leave index at 0, matching "asserts on underflow"
		return nil
	}
	return p.slots[idx]
}

// Release returns ptr to the pool. Calling Release on a pointer not
// currently acquired from this pool (or releasing the same pointer
// twice) is a contract violation; it is detected here via the
// over-delete check (index reaching n) but use-after-free within
// bounds cannot be detected without per-slot bookkeeping this pool
// intentionally omits, per spec.md §4.G's O(1) contract.
func (p *Pool[T]) Release(ptr *T) error {
	idx := p.index.Add(1) - 1
	if idx >= p.n {
		p.index.Add(-1) // undo
		return fmt.Errorf("atomicpool.Pool: over-delete (pool capacity %d)", p.n)
	}
	p.slots[idx] = ptr
	return nil
}

// Capacity returns N.
func (p *Pool[T]) Capacity() int { return int(p.n) }

// Available returns the number of free slots right now (racy under
// concurrent Acquire/Release, useful only for diagnostics).
func (p *Pool[T]) Available() int { return int(p.index.Load()) }
