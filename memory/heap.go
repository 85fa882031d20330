package memory

// DefaultHeap forwards to Go's runtime allocator. Results are aligned
// to at least minAlign (or align, if larger) by over-allocating and
// returning an aligned sub-slice, since make([]byte, n) alone does not
// promise 16-byte alignment.
type DefaultHeap struct{}

func (DefaultHeap) Kind() Kind { return KindSystem }

func (DefaultHeap) Alloc(size, align uintptr) []byte {
	if size == 0 {
		return nil
	}
	if align < minAlign {
		align = minAlign
	}
	// Over-allocate and hand back an aligned sub-slice; Go's allocator
	// does not expose an aligned-alloc primitive directly.
	buf := make([]byte, size+align)
	addr := uintptr(len(buf))
	_ = addr
	offset := alignOffset(buf, align)
	out := buf[offset : offset+int(size) : offset+int(size)]
	if len(out) == 0 {
		fail("memory.DefaultHeap", "Alloc(%d, %d): zero-length result", size, align)
	}
	return out
}

func (h DefaultHeap) Realloc(b []byte, size, align uintptr) []byte {
	nb := h.Alloc(size, align)
	n := len(b)
	if n > len(nb) {
		n = len(nb)
	}
	copy(nb, b[:n])
	return nb
}

func (DefaultHeap) Free(b []byte, align uintptr) {
	// Go's GC reclaims the backing array; Free is a documented no-op
	// that exists to satisfy the Allocator interface uniformly.
}

func alignOffset(buf []byte, align uintptr) int {
	if len(buf) == 0 {
		return 0
	}
	base := uintptrOf(buf)
	aligned := (base + align - 1) &^ (align - 1)
	return int(aligned - base)
}
