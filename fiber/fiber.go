// Package fiber implements the stackful coroutine of spec.md §4.I. A
// goroutine *is* Junkyard's fiber: it already owns a growable private
// stack, and — the property spec.md's Design Notes calls mandatory —
// the Go scheduler already lets a parked goroutine resume on a
// different OS thread. Fiber wraps one goroutine with two unbuffered
// handshake channels so Start/Resume/Suspend are explicit and cooperative
// rather than the fire-and-forget `go func(){...}()` the teacher's
// runtime/fiber_native.go used for its green threads: this module needs
// the caller to regain control exactly at suspension and exactly at
// completion, which a bare `go` statement cannot give back.
package fiber

import "sync/atomic"

// State is the fiber state machine of spec.md §4.I:
// Fresh -> Running <-> Suspended -> Dead.
type State int32

const (
	Fresh State = iota
	Running
	Suspended
	Dead
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "Fresh"
	case Running:
		return "Running"
	case Suspended:
		return "Suspended"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// Waitable is the minimal surface a suspension condition needs: an
// atomic, consuming check of readiness. job.Signal implements this so
// that package fiber never needs to import package job (which embeds
// Fiber into its FiberProps and would otherwise cycle).
type Waitable interface {
	TryConsume() bool
}

// Fiber wraps one goroutine as a stackful coroutine with lazy start.
type Fiber struct {
	name string

	resume  chan struct{}
	yielded chan struct{}

	state   atomic.Int32
	started atomic.Bool
	panic   any

	// ChildCounter, when non-nil, is the JobInstance counter this
	// fiber is waiting on (set by the scheduler immediately before
	// Suspend, per spec.md §3's Fiber.childCounter).
	ChildCounter *atomic.Int32
	// SignalWaited, when non-nil, is the JobSignal this fiber is
	// waiting on (spec.md §3's Fiber.signalWaited).
	SignalWaited Waitable

	// OwnerThreadID is a hint only, per spec.md §3 ("last thread that
	// executed it"); the scheduler updates it on every Start/Resume.
	OwnerThreadID atomic.Int32
}

// New creates a fiber in the Fresh state. It takes no stack size: Go
// manages the goroutine's own growable stack itself.
func New(name string) *Fiber {
	f := &Fiber{
		name:    name,
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}
	f.state.Store(int32(Fresh))
	return f
}

// Name returns the fiber's diagnostic name.
func (f *Fiber) Name() string { return f.name }

// State returns the current state.
func (f *Fiber) State() State { return State(f.state.Load()) }

// Panic returns the recovered panic value if the entry function
// panicked, or nil otherwise. Only meaningful once State() == Dead.
func (f *Fiber) Panic() any { return f.panic }

// Start launches entry on a new goroutine and blocks the calling
// goroutine (a worker) until entry either calls Suspend or returns,
// per spec.md's Fresh -> Running transition. Must be called exactly
// once per Fiber.
func (f *Fiber) Start(entry func()) {
	f.started.Store(true)
	f.state.Store(int32(Running))
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.panic = r
			}
			f.state.Store(int32(Dead))
			f.yielded <- struct{}{}
		}()
		entry()
	}()
	<-f.yielded
}

// Started reports whether Start has been called.
func (f *Fiber) Started() bool { return f.started.Load() }

// Resume hands control back to a Suspended fiber and blocks the
// calling goroutine (a worker, possibly a different one than last
// time) until the fiber suspends again or completes.
func (f *Fiber) Resume() {
	f.resume <- struct{}{}
	<-f.yielded
}

// Suspend is called from within the fiber's own goroutine (by
// WaitForCompletion or JobSignal.Wait) to yield control back to
// whichever worker called Start/Resume, and blocks until that worker
// (or a later one) calls Resume again. Running -> Suspended -> Running.
func (f *Fiber) Suspend() {
	f.state.Store(int32(Suspended))
	f.yielded <- struct{}{}
	<-f.resume
	f.state.Store(int32(Running))
}
