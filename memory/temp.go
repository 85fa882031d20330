package memory

import (
	"sync"
	"sync/atomic"

	"github.com/septag/junkyard-core/sysos"
	"github.com/septag/junkyard-core/vmem"
)

// Temp is a per-goroutine LIFO stack of bump allocators, per spec.md
// §4.C. PushID returns an opaque id identifying the stack frame; every
// allocation made while that id is the current top lives until the
// matching PopID. One Temp is meant to be used from exactly one
// goroutine at a time — the scheduler gives each fiber its own.
type Temp struct {
	arena *vmem.BumpArena
	stack []tempFrame
	mu    sync.Mutex

	protector *fiberProtector
}

type tempFrame struct {
	id     int64
	offset uintptr
}

var tempIDCounter atomic.Int64

// NewTemp creates a Temp backed by a fresh bump arena of reserveSize
// bytes (lazily committed in pageSize chunks).
func NewTemp(reserveSize, pageSize uintptr) (*Temp, error) {
	arena, err := vmem.NewBumpArena(reserveSize, pageSize)
	if err != nil {
		return nil, err
	}
	return &Temp{arena: arena, protector: newFiberProtector()}, nil
}

// PushID opens a new scope on the temp stack and returns its id.
func (t *Temp) PushID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := tempIDCounter.Add(1)
	t.stack = append(t.stack, tempFrame{id: id, offset: t.arena.Offset()})
	t.protector.push(id)
	return id
}

// PopID closes the scope identified by id, which must be the current
// top of the stack (LIFO discipline), and rewinds the bump offset to
// where it was before the matching PushID.
func (t *Temp) PopID(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) == 0 || t.stack[len(t.stack)-1].id != id {
		sysos.Fail(sysos.FailContractViolation, "memory.Temp.PopID(%d): not the current scope", id)
		return
	}
	frame := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.arena.SetOffset(frame.offset)
	t.protector.pop(id)
}

// Alloc allocates against the current top-of-stack scope. Calling
// Alloc with no open scope (PushID never called, or the last PopID
// already closed it) is a contract violation.
func (t *Temp) Alloc(size, align uintptr) []byte {
	t.mu.Lock()
	if len(t.stack) == 0 {
		t.mu.Unlock()
		sysos.Fail(sysos.FailContractViolation, "memory.Temp.Alloc: no open PushID scope")
		return nil
	}
	t.mu.Unlock()
	out, err := t.arena.Alloc(size, align)
	if err != nil {
		fail("memory.Temp", "Alloc(%d, %d): %v", size, align, err)
		return nil
	}
	return out
}

// GetOffset returns the arena's current bump offset, exercised by
// scenario S6 in spec.md §8.
func (t *Temp) GetOffset() uintptr { return t.arena.Offset() }

// Arena exposes the underlying bump arena for lifecycle management
// (Release) by the owner of this Temp.
func (t *Temp) Arena() *vmem.BumpArena { return t.arena }

// Scope acquires a PushID scope and returns a function that releases
// it, for the RAII-style `defer memory.Scope(temp)()` idiom spec.md
// §4.C calls for.
func Scope(t *Temp) func() {
	id := t.PushID()
	return func() { t.PopID(id) }
}

// AssertEmptyAcrossSuspension fatal-asserts if the protector finds an
// unmatched PushID on this Temp. The scheduler calls it once, after a
// fiber's callback has returned; it is not called at the suspension
// points (WaitForCompletion, JobSignal.Wait), so a scope held open
// across a yield is not detected there.
func (t *Temp) AssertEmptyAcrossSuspension() {
	if !t.protector.empty() {
		sysos.Fail(sysos.FailContractViolation, "memory.Temp: scope(s) open across fiber suspension: %v", t.protector.openIDs())
	}
}
