// Package memory implements the allocator family of spec.md §4.C: a
// common Allocator interface plus the default heap, bump, TLSF,
// thread-safe TLSF, temp, and single-shot-malloc concrete allocators.
// The other packages of this module (container, handle, hashtable,
// atomicpool, job) do not take an Allocator at construction; they
// allocate their storage with Go's make.
package memory

import (
	"fmt"

	"github.com/septag/junkyard-core/jlog"
	"github.com/septag/junkyard-core/sysos"
)

// Kind tags a concrete allocator for subsystem checks, carried from
// original_source/ Core/Memory.h's allocator-kind enum.
type Kind int

const (
	KindSystem Kind = iota
	KindTemp
	KindBump
	KindTlsf
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "System"
	case KindTemp:
		return "Temp"
	case KindBump:
		return "Bump"
	case KindTlsf:
		return "Tlsf"
	default:
		return "Unknown"
	}
}

// Allocator is the polymorphic allocator handle of spec.md §6. Sizes
// and alignments are in bytes; align must be a power of two.
type Allocator interface {
	Alloc(size, align uintptr) []byte
	Realloc(b []byte, size, align uintptr) []byte
	Free(b []byte, align uintptr)
	Kind() Kind
}

// minAlign is the machine's minimum alignment guarantee, matching the
// "always aligned to 16B" contract spec.md §4.C gives the default heap.
const minAlign = 16

// fail surfaces an Alloc/Realloc failure through sysos.Fail: these are
// unrecoverable per spec.md §7, not retryable conditions.
func fail(component string, format string, args ...any) {
	jlog.For(component).Error().Msg(fmt.Sprintf(format, args...))
	sysos.Fail(sysos.FailOutOfMemory, format, args...)
}
