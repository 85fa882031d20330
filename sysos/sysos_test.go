package sysos

import (
	"testing"
	"time"
	"unsafe"
)

func TestSemaphorePostWait(t *testing.T) {
	sem := NewSemaphore()
	sem.Post(2)
	if !sem.Wait(100 * time.Millisecond) {
		t.Fatal("expected first wait to succeed")
	}
	if !sem.Wait(100 * time.Millisecond) {
		t.Fatal("expected second wait to succeed")
	}
	if sem.Wait(20 * time.Millisecond) {
		t.Fatal("expected third wait to time out")
	}
}

func TestSignalWaitResets(t *testing.T) {
	sig := NewSignal()
	done := make(chan bool, 1)
	go func() {
		done <- sig.Wait(time.Second)
	}()
	time.Sleep(10 * time.Millisecond)
	sig.Set(1)
	if ok := <-done; !ok {
		t.Fatal("expected Wait to return true")
	}
	if v := sig.Value(); v != 0 {
		t.Fatalf("expected value reset to 0 after Wait, got %d", v)
	}
}

func TestSignalWaitTimeout(t *testing.T) {
	sig := NewSignal()
	if sig.Wait(20 * time.Millisecond) {
		t.Fatal("expected timeout (false)")
	}
}

func TestMutexRecursive(t *testing.T) {
	m := NewMutex(10)
	m.Enter()
	// Re-entering from the same goroutine must not deadlock when
	// CurrentID is available (Linux); elsewhere this would legitimately
	// need a separate goroutine to observe contention, which TryEnter
	// below exercises instead.
	if _, ok := CurrentID(); ok {
		m.Enter()
		m.Exit()
	}
	m.Exit()
}

func TestMutexTryEnterContention(t *testing.T) {
	m := NewMutex(10)
	m.Enter()
	defer m.Exit()

	locked := make(chan bool, 1)
	go func() {
		locked <- m.TryEnter()
	}()
	if got := <-locked; got {
		t.Fatal("expected TryEnter from another goroutine to fail while held")
	}
}

func TestVirtualMemoryReserveCommitRelease(t *testing.T) {
	var vm VirtualMemory
	const size = 64 * 1024
	base, err := vm.Reserve(size, VMFlagNone)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := vm.Commit(base, size); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(base)), int(size))
	b[0] = 0xAB
	b[size-1] = 0xCD
	if b[0] != 0xAB || b[size-1] != 0xCD {
		t.Fatal("committed memory did not retain writes")
	}
	if err := vm.Release(base, size); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}
