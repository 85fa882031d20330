package sysos

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ThreadPriority mirrors the OS scheduling classes spec.md §4.A lists.
type ThreadPriority int

const (
	PriorityIdle ThreadPriority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityRealtime
)

// ThreadFunc is a thread entry point; its return value is Stop()'s
// result, mirroring a C thread proc's exit code.
type ThreadFunc func(userData any) int

// Thread wraps a goroutine pinned to a single OS thread for its
// lifetime via runtime.LockOSThread. Pinning is what makes CurrentID /
// CurrentName meaningful: on Linux every call made from code running
// on this goroutine — however deep, however much later — observes the
// same kernel TID.
type Thread struct {
	name      string
	fn        ThreadFunc
	userData  any
	stackSize int
	flags     ThreadFlags

	startOnce sync.Once
	done      chan struct{}
	exitCode  int32
	running   atomic.Bool
	tid       int32
	tidKnown  atomic.Bool
}

// ThreadFlags are reserved for future platform-specific start options.
type ThreadFlags uint32

const ThreadFlagNone ThreadFlags = 0

// NewThread constructs a thread; it does not start running until Start.
func NewThread(name string, fn ThreadFunc, userData any, stackSize int, flags ThreadFlags) *Thread {
	return &Thread{
		name:      name,
		fn:        fn,
		userData:  userData,
		stackSize: stackSize,
		flags:     flags,
		done:      make(chan struct{}),
	}
}

// Start launches the thread. Safe to call once; subsequent calls are a no-op.
func (t *Thread) Start() {
	t.startOnce.Do(func() {
		t.running.Store(true)
		go t.run()
	})
}

func (t *Thread) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, ok := currentKernelTID()
	if ok {
		t.tid = tid
		t.tidKnown.Store(true)
		registerThreadName(tid, t.name)
		defer unregisterThreadName(tid)
	}

	defer func() {
		t.running.Store(false)
		close(t.done)
	}()

	t.exitCode = int32(t.fn(t.userData))
}

// Stop blocks until the thread's entry function returns and yields its
// exit code.
func (t *Thread) Stop() int {
	<-t.done
	return int(t.exitCode)
}

// IsRunning reports whether the thread's entry function has not yet returned.
func (t *Thread) IsRunning() bool { return t.running.Load() }

// Name returns the thread's configured name.
func (t *Thread) Name() string { return t.name }

// ID returns the kernel thread id this Thread ran on, if known (only
// populated on platforms where currentKernelTID is supported, and only
// once the thread has actually started).
func (t *Thread) ID() (int32, bool) {
	if !t.tidKnown.Load() {
		return 0, false
	}
	return t.tid, true
}

// SetPriority requests an OS scheduling priority for the thread. Only
// meaningful once the thread has started (see currentKernelTID docs).
func (t *Thread) SetPriority(p ThreadPriority) error {
	tid, ok := t.ID()
	if !ok {
		return nil
	}
	return setThreadPriority(tid, p)
}

// CurrentID returns the kernel thread id of the OS thread the calling
// goroutine is on. The id stays stable only when the goroutine is
// pinned (a Thread started via this package). ok is false on platforms
// without a cheap, stable kernel TID (anything but Linux); on Linux it
// is always true, pinned or not.
func CurrentID() (id int32, ok bool) {
	return currentKernelTID()
}

// CurrentName returns the registered name of the calling thread, see CurrentID.
func CurrentName() (name string, ok bool) {
	tid, ok := currentKernelTID()
	if !ok {
		return "", false
	}
	v, found := threadNames.Load(tid)
	if !found {
		return "", false
	}
	return v.(string), true
}

func registerThreadName(tid int32, name string) { threadNames.Store(tid, name) }
func unregisterThreadName(tid int32)             { threadNames.Delete(tid) }

var threadNames sync.Map // int32 tid -> string name

// Sleep suspends the calling goroutine for the given duration in milliseconds.
func Sleep(ms int64) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Yield hands the processor to another goroutine/OS thread.
func Yield() { runtime.Gosched() }
