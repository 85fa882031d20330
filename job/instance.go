package job

import "sync/atomic"

// Instance is the handle a caller receives for a dispatch, per spec.md
// §3's JobInstance. counter starts at groupSize and is decremented as
// each fiber in the group completes; reaching zero means the dispatch
// is done. autoDelete instances are returned to their pool by the last
// completing worker; non-auto-delete instances must be released via
// WaitForCompletion.
type Instance struct {
	counter    atomic.Int32
	jobType    Type
	autoDelete bool
}

// IsRunning reports whether any fiber in the dispatch is still
// outstanding.
func (inst *Instance) IsRunning() bool { return inst.counter.Load() > 0 }

// Type returns which thread pool serves this dispatch.
func (inst *Instance) Type() Type { return inst.jobType }
