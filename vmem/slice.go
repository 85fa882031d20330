package vmem

import "unsafe"

// sliceAt reconstructs a []byte view over [addr, addr+size) of
// reserved/committed virtual memory. The backing memory is owned by
// the OS mapping behind the owning arena's sysos.VirtualMemory, not
// the Go heap, so it is never touched by the garbage collector.
func sliceAt(addr uintptr, size uintptr) []byte {
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
}
