package job

import (
	"context"

	"github.com/septag/junkyard-core/fiber"
	"github.com/septag/junkyard-core/memory"
)

// fiberProps is a pending or suspended unit of work, per spec.md §3.
// prev/next are intrusive doubly-linked list pointers within exactly
// one WaitingList priority queue at a time, or nil while the fiber
// backing this props is actively running on a worker.
type fiberProps struct {
	callback  JobFunc
	userData  any
	index     int32
	stackSize int
	priority  Priority
	instance  *Instance
	ctx       context.Context // dispatch-time context, wrapped with the fiber before invoking callback

	fib  *fiber.Fiber
	temp *memory.Temp // lazily created on first run, sized by Options.FiberTempArenaSize

	// lastInGroup is set by the callback wrapper to whether this fiber's
	// completion dropped instance.counter to zero, so finishFiberProps
	// can release an autoDelete Instance exactly once instead of racing
	// on a second read of IsRunning().
	lastInGroup bool

	prev, next *fiberProps
}
