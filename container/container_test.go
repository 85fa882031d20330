package container

import (
	"bytes"
	"testing"
)

func TestArrayPushGrowth(t *testing.T) {
	a := NewArray[int](2)
	for i := 0; i < 10; i++ {
		a.PushValue(i)
	}
	if a.Len() != 10 {
		t.Fatalf("expected length 10, got %d", a.Len())
	}
	for i, v := range a.Slice() {
		if v != i {
			t.Fatalf("index %d: expected %d, got %d", i, i, v)
		}
	}
}

// TestArrayPopPreservesOrder exercises testable property 7 from
// spec.md §8.
func TestArrayPopPreservesOrder(t *testing.T) {
	a := NewArray[int](8)
	for i := 0; i < 5; i++ {
		a.PushValue(i)
	}
	a.Pop(2) // removes value 2
	want := []int{0, 1, 3, 4}
	got := a.Slice()
	if len(got) != len(want) {
		t.Fatalf("expected length %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestArrayRemoveAndSwap(t *testing.T) {
	a := NewArray[int](8)
	for i := 0; i < 5; i++ {
		a.PushValue(i)
	}
	a.RemoveAndSwap(1) // last element (4) now occupies position 1
	got := a.Slice()
	if len(got) != 4 {
		t.Fatalf("expected length 4, got %d", len(got))
	}
	if got[1] != 4 {
		t.Fatalf("expected last element swapped into position 1, got %d", got[1])
	}
}

func TestStaticArrayOverflowPanics(t *testing.T) {
	sa := NewStaticArray[int](2)
	sa.PushValue(1)
	sa.PushValue(2)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on overflow of a fixed-capacity array")
		}
	}()
	sa.PushValue(3)
}

func TestBlobWriteReadStringBinary(t *testing.T) {
	b := NewBlob(GrowMultiply, 0)
	if err := b.WriteStringBinary("hello junkyard", false); err != nil {
		t.Fatalf("WriteStringBinary: %v", err)
	}
	s, err := b.ReadStringBinary(false)
	if err != nil {
		t.Fatalf("ReadStringBinary: %v", err)
	}
	if s != "hello junkyard" {
		t.Fatalf("expected %q, got %q", "hello junkyard", s)
	}
}

func TestBlobNoGrowPolicyErrors(t *testing.T) {
	b := NewBlob(GrowNone, 0)
	if _, err := b.Write([]byte("x")); err == nil {
		t.Fatal("expected write overflow error with GrowNone policy")
	}
}

func TestRingBlobWriteReadWraps(t *testing.T) {
	r := NewRingBlob(8)
	if err := r.Write([]byte("ABCDEF")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := make([]byte, 4)
	n := r.Read(out)
	if n != 4 || !bytes.Equal(out, []byte("ABCD")) {
		t.Fatalf("unexpected read: %q (n=%d)", out, n)
	}
	if err := r.Write([]byte("GH")); err != nil {
		t.Fatalf("Write after partial read: %v", err)
	}
	rest := make([]byte, r.Size())
	r.Read(rest)
	if string(rest) != "EFGH" {
		t.Fatalf("expected wrapped contents EFGH, got %q", rest)
	}
}

func TestRingBlobWriteOverflowErrors(t *testing.T) {
	r := NewRingBlob(4)
	if err := r.Write([]byte("12345")); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestRingBlobPeekDoesNotConsume(t *testing.T) {
	r := NewRingBlob(8)
	r.Write([]byte("abcd"))
	peek := make([]byte, 2)
	if n := r.Peek(peek, 1); n != 2 || string(peek) != "bc" {
		t.Fatalf("unexpected peek result %q (n=%d)", peek, n)
	}
	if r.Size() != 4 {
		t.Fatalf("expected Peek to not consume, size still 4, got %d", r.Size())
	}
}
