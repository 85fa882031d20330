package memory

import (
	"fmt"
	"math/bits"
	"sort"
	"sync"
)

// TLSF is a Two-Level Segregated Fit allocator over a caller-supplied
// buffer, per spec.md §4.C. Unlike the C++ original, block bookkeeping
// (offset/size/free) lives in ordinary Go slices rather than headers
// embedded via unsafe pointer arithmetic inside the caller's buffer:
// a Go slice the GC also scans cannot safely carry raw pointer-sized
// headers the allocator itself overwrites. GetMemoryRequirement is
// kept as a sizing API for callers mirroring the original contract,
// returning an estimate of per-block bookkeeping overhead.
type TLSF struct {
	mu sync.Mutex

	buf       []byte
	blocks    []tlsfBlock // sorted by offset, covers the whole buffer
	freeLists map[int][]int

	debugMode bool
	live      map[uintptr]liveAlloc // only populated when debugMode

	allocated uintptr
}

type tlsfBlock struct {
	offset uintptr
	size   uintptr
	free   bool
}

type liveAlloc struct {
	size  uintptr
	stack string
}

// tlsfBookkeepingPerBlock approximates the original's per-block header
// overhead (offset+size+flags+free-list links), used by
// GetMemoryRequirement.
const tlsfBookkeepingPerBlock = 48

// NewTLSF constructs a pool managing the entirety of buf as one
// initial free block.
func NewTLSF(buf []byte) *TLSF {
	t := &TLSF{
		buf:       buf,
		freeLists: make(map[int][]int),
	}
	if len(buf) > 0 {
		t.blocks = []tlsfBlock{{offset: 0, size: uintptr(len(buf)), free: true}}
		t.insertFree(0)
	}
	return t
}

// GetMemoryRequirement estimates the bookkeeping bytes a pool over
// poolSize bytes of payload will need, assuming a worst case of one
// block per minimum allocation granularity.
func GetMemoryRequirement(poolSize uintptr) uintptr {
	const minBlock = 32
	worstCaseBlocks := poolSize/minBlock + 1
	return worstCaseBlocks * tlsfBookkeepingPerBlock
}

// SetDebugMode toggles leak-recording: every live allocation's size
// (and, if available, caller stack) is retained until Free, so
// LiveAllocations can report leaks at shutdown.
func (t *TLSF) SetDebugMode(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.debugMode = on
	if on && t.live == nil {
		t.live = make(map[uintptr]liveAlloc)
	}
}

func sizeClass(size uintptr) int {
	if size == 0 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

func (t *TLSF) insertFree(idx int) {
	cls := sizeClass(t.blocks[idx].size)
	t.freeLists[cls] = append(t.freeLists[cls], idx)
}

func (t *TLSF) removeFree(idx int) {
	cls := sizeClass(t.blocks[idx].size)
	list := t.freeLists[cls]
	for i, v := range list {
		if v == idx {
			t.freeLists[cls] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Alloc finds the best-fitting free block via segregated free lists,
// splitting off the remainder when it's worth keeping as its own block.
func (t *TLSF) Alloc(size, align uintptr) []byte {
	if size == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	needed := alignUpT(size, align)
	startClass := sizeClass(needed)
	for cls := startClass; cls <= sizeClass(uintptr(len(t.buf)))+1; cls++ {
		list := t.freeLists[cls]
		for i, idx := range list {
			b := t.blocks[idx]
			alignedOffset := alignUpT(b.offset, align)
			pad := alignedOffset - b.offset
			if b.size < pad+size {
				continue
			}
			_ = i
			t.allocated += t.splitAndUse(idx, pad, size)
			out := t.buf[alignedOffset : alignedOffset+size : alignedOffset+size]
			if t.debugMode {
				t.live[alignedOffset] = liveAlloc{size: size}
			}
			return out
		}
	}
	fail("memory.TLSF", "Alloc(%d, %d): pool exhausted (%d bytes free)", size, align, t.freeBytesLocked())
	return nil
}

// splitAndUse marks blocks[idx] (plus pad bytes of leading slack, if
// any) as used, splitting off a trailing free remainder when it is
// large enough to be useful. It returns the size of the used block,
// which includes any remainder folded into it.
func (t *TLSF) splitAndUse(idx int, pad, size uintptr) uintptr {
	b := t.blocks[idx]
	const minUsefulSplit = 32

	used := tlsfBlock{offset: b.offset + pad, size: size, free: false}
	remainder := b.size - pad - size

	newBlocks := make([]tlsfBlock, 0, len(t.blocks)+2)
	newBlocks = append(newBlocks, t.blocks[:idx]...)
	if pad > 0 {
		newBlocks = append(newBlocks, tlsfBlock{offset: b.offset, size: pad, free: true})
	}
	newBlocks = append(newBlocks, used)
	if remainder >= minUsefulSplit {
		newBlocks = append(newBlocks, tlsfBlock{offset: used.offset + used.size, size: remainder, free: true})
	} else if remainder > 0 {
		// Too small to be useful standalone; fold into the used block
		// so it isn't lost as unreachable space.
		newBlocks[len(newBlocks)-1].size += remainder
		used.size += remainder
	}
	newBlocks = append(newBlocks, t.blocks[idx+1:]...)
	t.rebuildIndexes(newBlocks)
	return used.size
}

// rebuildIndexes replaces t.blocks and recomputes every free list from
// scratch. Block counts stay small for a scheduler-sized pool, so this
// is simpler and safer than shifting indices in place across a splice.
func (t *TLSF) rebuildIndexes(blocks []tlsfBlock) {
	t.blocks = blocks
	t.freeLists = make(map[int][]int)
	for i, b := range t.blocks {
		if b.free {
			t.insertFree(i)
		}
	}
}

// Free returns b to the pool, coalescing with physically adjacent
// free neighbors.
func (t *TLSF) Free(b []byte, align uintptr) {
	if len(b) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	addr := offsetWithin(t.buf, b)
	idx := sort.Search(len(t.blocks), func(i int) bool { return t.blocks[i].offset >= addr })
	if idx == len(t.blocks) || t.blocks[idx].offset != addr || t.blocks[idx].free {
		fail("memory.TLSF", "Free: pointer %d not a live allocation from this pool", addr)
		return
	}

	t.allocated -= t.blocks[idx].size
	if t.debugMode {
		delete(t.live, addr)
	}

	blocks := append([]tlsfBlock{}, t.blocks...)
	blocks[idx].free = true

	// Coalesce with the following block.
	if idx+1 < len(blocks) && blocks[idx+1].free {
		blocks[idx].size += blocks[idx+1].size
		blocks = append(blocks[:idx+1], blocks[idx+2:]...)
	}
	// Coalesce with the preceding block.
	if idx > 0 && blocks[idx-1].free {
		blocks[idx-1].size += blocks[idx].size
		blocks = append(blocks[:idx], blocks[idx+1:]...)
	}
	t.rebuildIndexes(blocks)
}

func (t *TLSF) Kind() Kind { return KindTlsf }

func (t *TLSF) Realloc(b []byte, size, align uintptr) []byte {
	out := t.Alloc(size, align)
	n := len(b)
	if n > len(out) {
		n = len(out)
	}
	copy(out, b[:n])
	if len(b) > 0 {
		t.Free(b, align)
	}
	return out
}

// AllocatedBytes returns the total bytes currently handed out.
func (t *TLSF) AllocatedBytes() uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocated
}

// FragmentationRatio reports the fraction of free bytes that are
// stranded in blocks smaller than the single largest free block — 0
// means all free space is in one contiguous block, 1 means maximally
// fragmented.
func (t *TLSF) FragmentationRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total, largest uintptr
	for _, b := range t.blocks {
		if !b.free {
			continue
		}
		total += b.size
		if b.size > largest {
			largest = b.size
		}
	}
	if total == 0 {
		return 0
	}
	return 1 - float64(largest)/float64(total)
}

func (t *TLSF) freeBytesLocked() uintptr {
	var total uintptr
	for _, b := range t.blocks {
		if b.free {
			total += b.size
		}
	}
	return total
}

// Validate walks the block list checking that blocks are contiguous,
// non-overlapping, and that free-list membership matches each block's
// free flag. Returns an error describing the first inconsistency found.
func (t *TLSF) Validate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cursor uintptr
	for i, b := range t.blocks {
		if b.offset != cursor {
			return fmt.Errorf("memory.TLSF: block %d offset %d != expected %d", i, b.offset, cursor)
		}
		cursor += b.size
	}
	if cursor != uintptr(len(t.buf)) {
		return fmt.Errorf("memory.TLSF: blocks cover %d bytes, pool is %d", cursor, len(t.buf))
	}
	inFreeList := make(map[int]bool)
	for _, list := range t.freeLists {
		for _, idx := range list {
			inFreeList[idx] = true
		}
	}
	for i, b := range t.blocks {
		if b.free != inFreeList[i] {
			return fmt.Errorf("memory.TLSF: block %d free=%v but free-list membership=%v", i, b.free, inFreeList[i])
		}
	}
	return nil
}

// LiveAllocations returns the sizes of every allocation made since
// debug mode was enabled and not yet freed. Empty unless SetDebugMode(true).
func (t *TLSF) LiveAllocations() map[uintptr]uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[uintptr]uintptr, len(t.live))
	for addr, a := range t.live {
		out[addr] = a.size
	}
	return out
}

func alignUpT(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// offsetWithin returns b's offset into parent, used to map a returned
// allocation back to its block.
func offsetWithin(parent, b []byte) uintptr {
	if len(b) == 0 || len(parent) == 0 {
		return 0
	}
	return uintptrOf(b) - uintptrOf(parent)
}
