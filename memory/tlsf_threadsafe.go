package memory

import (
	"runtime"
	"sync/atomic"
)

// ThreadSafeTLSF guards a TLSF pool with a spinlock (CAS + Gosched), as
// a distinct type from TLSF. TLSF itself already serializes every
// operation with its own sync.Mutex, so plain TLSF call sites also pay
// for a lock; this wrapper adds the spinlock on top of it.
type ThreadSafeTLSF struct {
	inner  *TLSF
	locked atomic.Bool
}

// NewThreadSafeTLSF wraps buf in a spinlock-guarded TLSF pool.
func NewThreadSafeTLSF(buf []byte) *ThreadSafeTLSF {
	return &ThreadSafeTLSF{inner: NewTLSF(buf)}
}

func (t *ThreadSafeTLSF) spinLock() {
	for !t.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (t *ThreadSafeTLSF) spinUnlock() {
	t.locked.Store(false)
}

func (t *ThreadSafeTLSF) Kind() Kind { return KindTlsf }

func (t *ThreadSafeTLSF) Alloc(size, align uintptr) []byte {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.Alloc(size, align)
}

func (t *ThreadSafeTLSF) Realloc(b []byte, size, align uintptr) []byte {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.Realloc(b, size, align)
}

func (t *ThreadSafeTLSF) Free(b []byte, align uintptr) {
	t.spinLock()
	defer t.spinUnlock()
	t.inner.Free(b, align)
}

// AllocatedBytes, FragmentationRatio, Validate, SetDebugMode, and
// LiveAllocations forward to the wrapped pool under the same spinlock.
func (t *ThreadSafeTLSF) AllocatedBytes() uintptr {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.AllocatedBytes()
}

func (t *ThreadSafeTLSF) FragmentationRatio() float64 {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.FragmentationRatio()
}

func (t *ThreadSafeTLSF) Validate() error {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.Validate()
}

func (t *ThreadSafeTLSF) SetDebugMode(on bool) {
	t.spinLock()
	defer t.spinUnlock()
	t.inner.SetDebugMode(on)
}

func (t *ThreadSafeTLSF) LiveAllocations() map[uintptr]uintptr {
	t.spinLock()
	defer t.spinUnlock()
	return t.inner.LiveAllocations()
}
