package handle

import "testing"

// TestHandlePoolReuseS4 mirrors scenario S4 from spec.md §8.
func TestHandlePoolReuseS4(t *testing.T) {
	p := NewPool[int](4, false)

	handles := make([]Handle, 4)
	for i := 0; i < 4; i++ {
		handles[i] = p.Add(i * 10)
		if !handles[i].IsValid() {
			t.Fatalf("Add(%d) returned invalid handle", i)
		}
	}

	removed := handles[1]
	p.Remove(removed)
	if p.IsValid(removed) {
		t.Fatal("expected removed handle to be invalid")
	}

	fifth := p.Add(999)
	if fifth.Index() != removed.Index() {
		t.Fatalf("expected slot reuse at index %d, got %d", removed.Index(), fifth.Index())
	}
	if fifth.Generation() <= removed.Generation() {
		t.Fatalf("expected strictly greater generation than %d, got %d", removed.Generation(), fifth.Generation())
	}
}

func TestHandlePoolDataAndIteration(t *testing.T) {
	p := NewPool[string](4, true)
	a := p.Add("a")
	b := p.Add("b")
	c := p.Add("c")

	if *p.Data(a) != "a" || *p.Data(b) != "b" || *p.Data(c) != "c" {
		t.Fatal("unexpected Data contents")
	}

	p.Remove(b)
	if p.IsValid(b) {
		t.Fatal("expected b invalid after Remove")
	}
	// a and c must still resolve correctly; removal swaps the last
	// dense entry (c) into b's vacated slot.
	if *p.Data(a) != "a" || *p.Data(c) != "c" {
		t.Fatal("remaining handles must still resolve to their original values")
	}
	if p.Count() != 2 {
		t.Fatalf("expected count 2, got %d", p.Count())
	}
}

func TestHandlePoolGrowsWhenAllocatorPresent(t *testing.T) {
	p := NewPool[int](2, true)
	var last Handle
	for i := 0; i < 10; i++ {
		last = p.Add(i)
		if !last.IsValid() {
			t.Fatalf("Add(%d) should have grown the pool instead of failing", i)
		}
	}
	if p.Count() != 10 {
		t.Fatalf("expected count 10, got %d", p.Count())
	}
}

func TestHandlePoolFullNoAllocatorReturnsInvalid(t *testing.T) {
	p := NewPool[int](2, false)
	p.Add(1)
	p.Add(2)
	if h := p.Add(3); h.IsValid() {
		t.Fatal("expected invalid handle when full with no allocator")
	}
}

func TestHandlePoolFindIf(t *testing.T) {
	p := NewPool[int](4, true)
	p.Add(1)
	target := p.Add(42)
	p.Add(3)

	found := p.FindIf(func(v int) bool { return v == 42 })
	if found != target {
		t.Fatalf("expected FindIf to return the handle for 42")
	}
	if missing := p.FindIf(func(v int) bool { return v == 999 }); missing != Invalid {
		t.Fatal("expected Invalid for no match")
	}
}
