package memory

import "testing"

func TestDefaultHeapAlignment(t *testing.T) {
	h := DefaultHeap{}
	b := h.Alloc(37, 16)
	if len(b) != 37 {
		t.Fatalf("expected length 37, got %d", len(b))
	}
	if uintptrOf(b)%16 != 0 {
		t.Fatalf("expected 16-byte alignment, got addr %% 16 = %d", uintptrOf(b)%16)
	}
}

func TestTLSFAllocFreeReuse(t *testing.T) {
	buf := make([]byte, 4096)
	p := NewTLSF(buf)

	a := p.Alloc(64, 8)
	if a == nil {
		t.Fatal("expected non-nil allocation")
	}
	before := p.AllocatedBytes()
	if before != 64 {
		t.Fatalf("expected 64 allocated, got %d", before)
	}

	p.Free(a, 8)
	if got := p.AllocatedBytes(); got != 0 {
		t.Fatalf("expected 0 allocated after Free, got %d", got)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	b := p.Alloc(64, 8)
	if b == nil {
		t.Fatal("expected reuse allocation to succeed")
	}
}

func TestTLSFCoalescesOnFree(t *testing.T) {
	buf := make([]byte, 4096)
	p := NewTLSF(buf)

	a := p.Alloc(128, 8)
	b := p.Alloc(128, 8)
	c := p.Alloc(128, 8)

	p.Free(a, 8)
	p.Free(b, 8)
	p.Free(c, 8)

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if frag := p.FragmentationRatio(); frag != 0 {
		t.Fatalf("expected full coalescing (fragmentation 0), got %f", frag)
	}
}

func TestTLSFDebugModeTracksLiveAllocations(t *testing.T) {
	buf := make([]byte, 4096)
	p := NewTLSF(buf)
	p.SetDebugMode(true)

	a := p.Alloc(100, 8)
	live := p.LiveAllocations()
	if len(live) != 1 {
		t.Fatalf("expected 1 live allocation, got %d", len(live))
	}
	p.Free(a, 8)
	if live := p.LiveAllocations(); len(live) != 0 {
		t.Fatalf("expected 0 live allocations after Free, got %d", len(live))
	}
}

// TestTempScopeS6 mirrors scenario S6 from spec.md §8: push id, alloc
// 3x1MiB inside the scope, pop id, and check the offset rewinds.
func TestTempScopeS6(t *testing.T) {
	temp, err := NewTemp(64<<20, 64*1024)
	if err != nil {
		t.Fatalf("NewTemp: %v", err)
	}
	defer temp.Arena().Release()

	id := temp.PushID()
	for i := 0; i < 3; i++ {
		b := temp.Alloc(1<<20, 8)
		if b == nil {
			t.Fatalf("alloc %d failed", i)
		}
	}
	temp.PopID(id)

	if got := temp.GetOffset(); got != 0 {
		t.Fatalf("expected offset 0 after pop, got %d", got)
	}

	id2 := temp.PushID()
	_ = temp.Alloc(4096, 8)
	preOffset := temp.GetOffset()
	temp.PopID(id2)
	if temp.GetOffset() != 0 {
		t.Fatalf("expected offset reset to 0 after second pop, got %d", temp.GetOffset())
	}
	_ = preOffset
}
