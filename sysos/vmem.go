package sysos

// VMFlags are hints passed to Reserve.
type VMFlags uint32

const (
	VMFlagNone VMFlags = 0
	// VMFlagLargePages hints that huge pages should back the mapping
	// where the platform supports it. Best-effort: unsupported
	// platforms silently ignore it rather than fail Reserve.
	VMFlagLargePages VMFlags = 1 << 0
)

// VirtualMemory reserves address space and commits/decommits pages
// within it on demand, per spec.md §4.A. Reserve returns usable
// address space only; Commit is what backs pages with RAM.
type VirtualMemory struct{}

// Reserve reserves size bytes of address space and returns the base
// address of that uncommitted (PROT_NONE) memory.
// Touching it before Commit faults; that's intentional.
func (VirtualMemory) Reserve(size uintptr, flags VMFlags) (base uintptr, err error) {
	return vmReserve(size, flags)
}

// Commit backs [base, base+size) with RAM, readable and writable.
func (VirtualMemory) Commit(base uintptr, size uintptr) error {
	return vmCommit(base, size)
}

// Decommit returns [base, base+size) to an unbacked state without
// releasing the address space reservation.
func (VirtualMemory) Decommit(base uintptr, size uintptr) error {
	return vmDecommit(base, size)
}

// Release frees the entire reservation starting at base.
func (VirtualMemory) Release(base uintptr, size uintptr) error {
	return vmRelease(base, size)
}
