//go:build linux || darwin

package sysos

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// vmReserve maps size bytes PROT_NONE, anonymous and private: usable
// address space with nothing backing it yet, exactly the semantics
// spec.md §4.A asks for.
func vmReserve(size uintptr, flags VMFlags) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("vmReserve: mmap %d bytes: %w", size, err)
	}
	if flags&VMFlagLargePages != 0 {
		_ = adviseHugePage(b)
	}
	return uintptr(unsafe.Pointer(&b[0])), nil
}

func vmCommit(base uintptr, size uintptr) error {
	s := sliceAt(base, size)
	if err := unix.Mprotect(s, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("vmCommit: mprotect %d bytes: %w", size, err)
	}
	return nil
}

func vmDecommit(base uintptr, size uintptr) error {
	s := sliceAt(base, size)
	_ = unix.Madvise(s, unix.MADV_DONTNEED)
	if err := unix.Mprotect(s, unix.PROT_NONE); err != nil {
		return fmt.Errorf("vmDecommit: mprotect %d bytes: %w", size, err)
	}
	return nil
}

func vmRelease(base uintptr, size uintptr) error {
	s := sliceAt(base, size)
	if err := unix.Munmap(s); err != nil {
		return fmt.Errorf("vmRelease: munmap %d bytes: %w", size, err)
	}
	return nil
}

// sliceAt reconstructs the []byte header mmap/mprotect/munmap need
// from a base address and length. The memory itself is not Go-heap
// managed (it came from mmap), so this does not confuse the GC.
func sliceAt(base uintptr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), int(size))
}
