package memory

import "github.com/septag/junkyard-core/vmem"

// Bump adapts a vmem.BumpArena to the Allocator interface.
type Bump struct {
	arena *vmem.BumpArena
}

// NewBump wraps an existing arena (shared with vmem directly, e.g. for
// Offset()/Reset() access from a temp-allocator stack frame).
func NewBump(arena *vmem.BumpArena) *Bump { return &Bump{arena: arena} }

func (b *Bump) Kind() Kind { return KindBump }

func (b *Bump) Alloc(size, align uintptr) []byte {
	out, err := b.arena.Alloc(size, align)
	if err != nil {
		fail("memory.Bump", "Alloc(%d, %d): %v", size, align, err)
		return nil
	}
	return out
}

func (b *Bump) Realloc(prev []byte, size, align uintptr) []byte {
	prevOffset := b.arena.Offset() - uintptr(len(prev))
	out, err := b.arena.Realloc(prevOffset, size, align)
	if err != nil {
		fail("memory.Bump", "Realloc(%d, %d): %v", size, align, err)
		return nil
	}
	return out
}

func (b *Bump) Free(prev []byte, align uintptr) {
	// Bump allocators free in bulk via Reset/Release, per spec.md §4.B;
	// a single Free is a no-op, matching the teacher's bump-region
	// style where individual frees are not tracked.
}

// Arena exposes the underlying vmem.BumpArena for Reset/Release/Offset.
func (b *Bump) Arena() *vmem.BumpArena { return b.arena }
