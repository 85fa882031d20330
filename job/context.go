package job

import (
	"context"

	"github.com/septag/junkyard-core/fiber"
)

// fiberKey is the context.Context key under which the currently
// executing Fiber is carried. This is this Go port's stand-in for the
// C++ original's thread-local "current fiber" global (spec.md's Design
// Notes calls for an explicit WorkerContext rather than a shared
// mutable global); threading it through context.Context is the
// idiomatic Go mechanism for per-call-chain identity and composes with
// any tracing/cancellation the embedding application already does.
type fiberKey struct{}

func withFiber(ctx context.Context, f *fiber.Fiber) context.Context {
	return context.WithValue(ctx, fiberKey{}, f)
}

// currentFiber returns the Fiber the calling goroutine is executing
// as, if any. WaitForCompletion and Signal.Wait use this to decide
// between suspending cooperatively (inside a fiber) and spinning (a
// plain application thread).
func currentFiber(ctx context.Context) (*fiber.Fiber, bool) {
	f, ok := ctx.Value(fiberKey{}).(*fiber.Fiber)
	return f, ok
}
