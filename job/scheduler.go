package job

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/septag/junkyard-core/atomicpool"
	"github.com/septag/junkyard-core/fiber"
	"github.com/septag/junkyard-core/jlog"
	"github.com/septag/junkyard-core/memory"
	"github.com/septag/junkyard-core/sysos"
)

// Options configures a Scheduler, per spec.md §4.J.
type Options struct {
	NumShortTaskThreads int
	NumLongTaskThreads  int
	MaxFibers           int // not read by the Scheduler; fibers are created per job and dropped when it ends
	MaxJobInstances     int
	MaxPendingFibers    int
	DebugAllocations    bool
	UseAndersonLock     bool
	// FiberTempArenaSize sizes the memory.Temp lazily attached to each
	// fiber that stands in for the per-fiber native stack pool spec.md's
	// original budgets (see Design Notes): Go goroutines grow their own
	// stack, so the "stack budget" is re-targeted onto per-fiber
	// scratch-allocation headroom instead. One arena per live fiber,
	// not per worker, because a worker can have several fibers
	// suspended (and their Temp scopes still open) at once.
	FiberTempArenaSize uintptr
}

// DefaultOptions mirrors spec.md §4.J's suggested defaults.
func DefaultOptions() Options {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return Options{
		NumShortTaskThreads: workers,
		NumLongTaskThreads:  workers,
		MaxFibers:           128,
		MaxJobInstances:     1024,
		MaxPendingFibers:    4096,
		FiberTempArenaSize:  4 * 1024 * 1024,
	}
}

// BudgetStats reports current pool usage, per spec.md §4.J/§9.
type BudgetStats struct {
	InstancesInUse   int
	InstancesTotal   int
	FiberPropsInUse  int
	FiberPropsTotal  int
	PendingShort     int
	PendingLong      int
}

type workerPool struct {
	threads []*sysos.Thread
	sem     *sysos.Semaphore
	list    *waitingList
	wg      sync.WaitGroup
}

// Scheduler is the fiber-based job scheduler of spec.md §4.J: two
// thread pools (ShortTask/LongTask), each with its own priority
// WaitingList and semaphore, running each job on its own Fiber, created
// when the job is first picked and dropped when it completes.
type Scheduler struct {
	opts  Options
	runID uuid.UUID

	pools [2]*workerPool

	instances  *atomicpool.Pool[Instance]
	fiberProps *atomicpool.Pool[fiberProps]

	quit chan struct{}
}

// NewScheduler builds and starts every worker thread for both pools.
func NewScheduler(opts Options) *Scheduler {
	if opts.NumShortTaskThreads < 1 {
		opts.NumShortTaskThreads = 1
	}
	if opts.NumLongTaskThreads < 1 {
		opts.NumLongTaskThreads = 1
	}
	if opts.MaxJobInstances < 1 {
		opts.MaxJobInstances = 1024
	}
	if opts.MaxPendingFibers < 1 {
		opts.MaxPendingFibers = 4096
	}
	if opts.FiberTempArenaSize == 0 {
		opts.FiberTempArenaSize = 4 * 1024 * 1024
	}

	s := &Scheduler{
		opts:       opts,
		runID:      uuid.New(),
		instances:  atomicpool.New[Instance](opts.MaxJobInstances),
		fiberProps: atomicpool.New[fiberProps](opts.MaxPendingFibers),
		quit:       make(chan struct{}),
	}

	log := jlog.For("scheduler")
	log.Info().Str("run_id", s.runID.String()).
		Int("short_threads", opts.NumShortTaskThreads).
		Int("long_threads", opts.NumLongTaskThreads).
		Msg("starting job scheduler")

	s.pools[ShortTask] = s.startPool(ShortTask, opts.NumShortTaskThreads)
	s.pools[LongTask] = s.startPool(LongTask, opts.NumLongTaskThreads)

	return s
}

func (s *Scheduler) startPool(t Type, n int) *workerPool {
	wp := &workerPool{
		sem:  sysos.NewSemaphore(),
		list: newWaitingList(s.opts.UseAndersonLock, n),
	}
	for i := 0; i < n; i++ {
		idx := i
		th := sysos.NewThread(fmt.Sprintf("%s-worker-%d", t, idx), func(any) int {
			s.workerLoop(t, wp)
			return 0
		}, nil, 0, sysos.ThreadFlagNone)
		wp.threads = append(wp.threads, th)
		wp.wg.Add(1)
		th.Start()
	}
	return wp
}

// Dispatch runs fn once per index in [0, groupSize) on the given
// thread pool and priority, returning an Instance the caller can poll
// with IsRunning or block on with WaitForCompletion. groupSize must be
// at least 1.
func (s *Scheduler) Dispatch(ctx context.Context, t Type, priority Priority, groupSize int32, fn JobFunc, userData any) *Instance {
	return s.dispatch(ctx, t, priority, groupSize, fn, userData, false)
}

// DispatchAuto behaves like Dispatch but the returned Instance
// self-releases back to the pool the moment the group finishes, per
// spec.md §3's JobInstance.autoDelete. Callers must not touch the
// returned pointer after the group could plausibly have completed.
func (s *Scheduler) DispatchAuto(ctx context.Context, t Type, priority Priority, groupSize int32, fn JobFunc, userData any) *Instance {
	return s.dispatch(ctx, t, priority, groupSize, fn, userData, true)
}

func (s *Scheduler) dispatch(ctx context.Context, t Type, priority Priority, groupSize int32, fn JobFunc, userData any, autoDelete bool) *Instance {
	if groupSize < 1 {
		groupSize = 1
	}

	inst := s.instances.Acquire()
	if inst == nil {
		sysos.Fail(sysos.FailPoolExhausted, "job.Scheduler: out of JobInstance slots (%d)", s.opts.MaxJobInstances)
		return nil
	}
	*inst = Instance{jobType: t, autoDelete: autoDelete}
	inst.counter.Store(groupSize)

	pool := s.pools[t]

	for i := int32(0); i < groupSize; i++ {
		p := s.fiberProps.Acquire()
		if p == nil {
			sysos.Fail(sysos.FailPoolExhausted, "job.Scheduler: out of pending fiber slots (%d)", s.opts.MaxPendingFibers)
			return inst
		}
		*p = fiberProps{
			callback:  fn,
			userData:  userData,
			index:     i,
			stackSize: stackSizeFor(t),
			priority:  priority,
			instance:  inst,
			ctx:       ctx,
		}
		pool.list.pushTail(p)
	}
	pool.sem.Post(int(groupSize))

	return inst
}

func stackSizeFor(t Type) int {
	if t == LongTask {
		return DefaultLongTaskStackSize
	}
	return DefaultShortTaskStackSize
}

// IsRunning reports whether inst's dispatch group has any outstanding work.
func (s *Scheduler) IsRunning(inst *Instance) bool {
	return inst != nil && inst.IsRunning()
}

// WaitForCompletion blocks the caller until inst's entire dispatch
// group has finished. Called from inside a fiber-executed job, it
// suspends that fiber cooperatively (so the worker goes on to run
// other ready work); called from outside any fiber, it spins with a
// short yield, matching spec.md §4.J's "main-thread join" path.
func (s *Scheduler) WaitForCompletion(ctx context.Context, inst *Instance) {
	if inst == nil {
		return
	}
	if fib, ok := currentFiber(ctx); ok {
		for inst.IsRunning() {
			fib.ChildCounter = &inst.counter
			fib.Suspend()
			fib.ChildCounter = nil
		}
		s.releaseNonAuto(inst)
		return
	}
	for inst.IsRunning() {
		sysos.Yield()
	}
	s.releaseNonAuto(inst)
}

// releaseNonAuto returns inst to the instance pool once its group has
// finished, per spec.md §4.J ("after the counter is zero, release the
// instance to its pool"). autoDelete instances are released instead by
// finishFiberProps the moment the last fiber in their group completes
// — releasing them here too would double-free into the atomic pool, so
// this is a no-op for them.
func (s *Scheduler) releaseNonAuto(inst *Instance) {
	if inst.autoDelete {
		return
	}
	_ = s.instances.Release(inst)
}

// workerLoop implements spec.md §4.J's worker: wait for a permit, pop
// the highest-priority eligible job, run it to its next suspension or
// completion, then either re-queue it (Suspended) or finish it (Dead).
func (s *Scheduler) workerLoop(t Type, wp *workerPool) {
	defer wp.wg.Done()

	for {
		if !wp.sem.WaitContext(context.Background()) {
			return
		}
		select {
		case <-s.quit:
			return
		default:
		}

		p, pending := wp.list.pop()
		if p == nil {
			if pending {
				// Something is queued but not yet eligible (waiting on a
				// child or signal); give it back a permit so another
				// worker cycle re-checks it instead of starving, and
				// yield first so this doesn't spin hot while it waits.
				sysos.Yield()
				wp.sem.Post(1)
			}
			continue
		}

		s.runFiberProps(p)

		switch {
		case p.fib.State() == fiber.Dead:
			s.finishFiberProps(p)
		default: // Suspended: still has work pending on it, re-queue
			wp.list.pushTail(p)
			wp.sem.Post(1)
		}
	}
}

func (s *Scheduler) runFiberProps(p *fiberProps) {
	if p.fib == nil {
		p.fib = fiber.New(fmt.Sprintf("job-%p", p))
		tid, _ := sysos.CurrentID()
		p.fib.OwnerThreadID.Store(tid)

		temp, err := memory.NewTemp(s.opts.FiberTempArenaSize, 64*1024)
		if err != nil {
			sysos.Fail(sysos.FailOutOfAddressSpace, "job.Scheduler: fiber temp arena: %v", err)
		}
		p.temp = temp

		callback, userData, index, ctx, inst := p.callback, p.userData, p.index, p.ctx, p.instance
		fibCtx := withFiber(ctx, p.fib)
		p.fib.Start(func() {
			id := temp.PushID()
			callback(fibCtx, index, userData)
			temp.PopID(id)
			temp.AssertEmptyAcrossSuspension()
			p.lastInGroup = inst.counter.Add(-1) == 0
		})
		return
	}
	tid, _ := sysos.CurrentID()
	p.fib.OwnerThreadID.Store(tid)
	p.fib.Resume()
}

func (s *Scheduler) finishFiberProps(p *fiberProps) {
	if pv := p.fib.Panic(); pv != nil {
		if fe, ok := pv.(*sysos.FailError); ok {
			panic(fe) // sysos.Fail is unrecoverable; do not let the fiber swallow it
		}
		jlog.For("scheduler").Info().Interface("panic", pv).Msg("job panicked")
	}
	inst := p.instance
	last := p.lastInGroup
	if p.temp != nil {
		_ = p.temp.Arena().Release()
	}
	*p = fiberProps{}
	_ = s.fiberProps.Release(p)
	if inst.autoDelete && last {
		_ = s.instances.Release(inst)
	}
}

// Stats returns a snapshot of pool usage for diagnostics, per spec.md §9.
func (s *Scheduler) Stats() BudgetStats {
	return BudgetStats{
		InstancesInUse:  s.instances.Capacity() - s.instances.Available(),
		InstancesTotal:  s.instances.Capacity(),
		FiberPropsInUse: s.fiberProps.Capacity() - s.fiberProps.Available(),
		FiberPropsTotal: s.fiberProps.Capacity(),
		PendingShort:    s.pools[ShortTask].list.Len(),
		PendingLong:     s.pools[LongTask].list.Len(),
	}
}

// RunID returns the scheduler's unique run identifier.
func (s *Scheduler) RunID() uuid.UUID { return s.runID }

// GetWorkerThreadsCount returns how many OS threads back a pool.
func (s *Scheduler) GetWorkerThreadsCount(t Type) int {
	return len(s.pools[t].threads)
}

// Release signals every worker to stop after its current job and
// blocks until all have exited.
func (s *Scheduler) Release() {
	close(s.quit)
	for _, wp := range s.pools {
		wp.sem.Post(len(wp.threads))
		wp.wg.Wait()
	}
}
