// Package handle implements the generation-tagged handle and handle
// pool of spec.md §4.E: a 32-bit opaque value split
// [generation:14][sparseIndex:18], backed by parallel dense and sparse
// arrays so that stale handles never alias a live slot until the
// generation wraps.
package handle

import "fmt"

const (
	// IndexBits and GenBits default to the split spec.md's Design
	// Notes call out: 18 bits of index (262143 live entries per pool),
	// 14 bits of generation (16384 reuses per slot before wraparound).
	IndexBits = 18
	GenBits   = 14

	indexMask = 1<<IndexBits - 1
	genMask   = 1<<GenBits - 1
)

// Handle is a 32-bit opaque value; zero is reserved for "invalid".
type Handle uint32

// Invalid is the reserved zero handle.
const Invalid Handle = 0

// newHandle packs a sparse index and generation into a Handle. index 0
// with generation 0 would collide with Invalid, so generation starts
// at 1 for every slot's first use (see Pool.Add).
func newHandle(index uint32, generation uint32) Handle {
	return Handle((generation&genMask)<<IndexBits | (index & indexMask))
}

// Index returns the packed sparse index.
func (h Handle) Index() uint32 { return uint32(h) & indexMask }

// Generation returns the packed generation.
func (h Handle) Generation() uint32 { return (uint32(h) >> IndexBits) & genMask }

// IsValid reports whether h is not the reserved invalid value. It does
// not check liveness against a pool — use Pool.IsValid for that.
func (h Handle) IsValid() bool { return h != Invalid }

func (h Handle) String() string {
	if h == Invalid {
		return "Handle(invalid)"
	}
	return fmt.Sprintf("Handle(idx=%d, gen=%d)", h.Index(), h.Generation())
}
