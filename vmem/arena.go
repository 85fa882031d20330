// Package vmem implements the virtual-memory arenas of spec.md §4.B: a
// bump allocator over a lazily-committed reservation, and a budget
// variant that adds an explicit commit ceiling and a diagnostic name.
package vmem

import (
	"fmt"
	"sync"

	"github.com/septag/junkyard-core/sysos"
)

// BumpArena reserves a large address range once and commits pages on
// demand as the bump offset crosses page boundaries. Realloc only
// succeeds for the most recent allocation; anything else gets a fresh
// allocation, per spec.md §4.B.
type BumpArena struct {
	mu sync.Mutex

	vm          sysos.VirtualMemory
	base        uintptr
	reserveSize uintptr
	pageSize    uintptr

	offset    uintptr // next free byte, relative to base
	committed uintptr // bytes currently backed by RAM
	lastAlloc uintptr // offset of the most recent allocation, for Realloc
	lastSize  uintptr
}

// NewBumpArena reserves reserveSize bytes of address space, rounding
// commits to pageSize. Nothing is committed until the first Alloc.
func NewBumpArena(reserveSize, pageSize uintptr) (*BumpArena, error) {
	if pageSize == 0 {
		pageSize = 4096
	}
	var vm sysos.VirtualMemory
	base, err := vm.Reserve(reserveSize, sysos.VMFlagNone)
	if err != nil {
		return nil, fmt.Errorf("vmem.NewBumpArena: %w", err)
	}
	return &BumpArena{vm: vm, base: base, reserveSize: reserveSize, pageSize: pageSize}, nil
}

// Alloc returns a byte slice of size bytes, aligned to align (a power
// of two), committing additional pages as needed. Invariant: offset
// never exceeds committed size; committed size never exceeds reserved
// size (spec.md §4.B).
func (a *BumpArena) Alloc(size, align uintptr) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	aligned := alignUp(a.offset, align)
	end := aligned + size
	if end > a.reserveSize {
		return nil, fmt.Errorf("vmem.BumpArena: out of address space (want %d, have %d)", end, a.reserveSize)
	}
	if end > a.committed {
		if err := a.growCommitLocked(end); err != nil {
			return nil, err
		}
	}
	a.offset = end
	a.lastAlloc = aligned
	a.lastSize = size
	return sliceAt(a.base+aligned, size), nil
}

// Realloc grows or shrinks the most recent allocation in place when
// possible; any other pointer gets a fresh allocation (the contents
// are not copied, matching the single-most-recent-allocation
// restriction in spec.md §4.B).
func (a *BumpArena) Realloc(prevOffset, newSize, align uintptr) ([]byte, error) {
	a.mu.Lock()
	if prevOffset == a.lastAlloc {
		end := a.lastAlloc + newSize
		if end <= a.reserveSize {
			if end > a.committed {
				if err := a.growCommitLocked(end); err != nil {
					a.mu.Unlock()
					return nil, err
				}
			}
			a.offset = end
			a.lastSize = newSize
			b := sliceAt(a.base+a.lastAlloc, newSize)
			a.mu.Unlock()
			return b, nil
		}
	}
	a.mu.Unlock()
	return a.Alloc(newSize, align)
}

// growCommitLocked commits whole pages up to at least upTo bytes from
// base. Must be called with a.mu held.
func (a *BumpArena) growCommitLocked(upTo uintptr) error {
	target := alignUp(upTo, a.pageSize)
	if target > a.reserveSize {
		target = a.reserveSize
	}
	if target <= a.committed {
		return nil
	}
	if err := a.vm.Commit(a.base+a.committed, target-a.committed); err != nil {
		return fmt.Errorf("vmem.BumpArena: commit: %w", err)
	}
	a.committed = target
	return nil
}

// Reset moves the bump offset back to zero without decommitting any
// pages, so the next burst of allocations reuses already-backed memory.
func (a *BumpArena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = 0
	a.lastAlloc = 0
	a.lastSize = 0
}

// Release frees the entire reservation. The arena must not be used
// afterwards.
func (a *BumpArena) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vm.Release(a.base, a.reserveSize)
}

// Offset returns the current bump offset, for diagnostics and tests
// (notably scenario S6 in spec.md §8, exercised by memory.Temp).
func (a *BumpArena) Offset() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

// SetOffset rewinds (or, in principle, fast-forwards) the bump offset
// directly. Used by memory.Temp's PopID to release everything
// allocated since the matching PushID without walking individual frees.
func (a *BumpArena) SetOffset(offset uintptr) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = offset
}

// Committed returns the number of bytes currently backed by RAM.
func (a *BumpArena) Committed() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.committed
}

// ReserveSize returns the total size of the address-space reservation.
func (a *BumpArena) ReserveSize() uintptr { return a.reserveSize }

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
