package sysos

import (
	"fmt"
	"sync/atomic"

	"github.com/septag/junkyard-core/jlog"
)

// FailKind classifies the unrecoverable error conditions spec.md §7
// defines: all of them are pre-flight sizing or ownership bugs, not
// conditions the caller can meaningfully retry from.
type FailKind int

const (
	FailOutOfMemory FailKind = iota
	FailOutOfAddressSpace
	FailPoolExhausted
	FailContractViolation
)

func (k FailKind) String() string {
	switch k {
	case FailOutOfMemory:
		return "OutOfMemory"
	case FailOutOfAddressSpace:
		return "OutOfAddressSpace"
	case FailPoolExhausted:
		return "PoolExhausted"
	case FailContractViolation:
		return "ContractViolation"
	default:
		return "Unknown"
	}
}

// FailFunc is the process-global fail callback signature. The default
// implementation logs and lets Fail's subsequent panic terminate the
// process; an embedder may install a different one (e.g. to flush
// telemetry) but cannot prevent Fail from aborting: there is no local
// recovery path for these error kinds, per spec.md §7.
type FailFunc func(kind FailKind, msg string)

var failCallback atomic.Value

func init() {
	failCallback.Store(FailFunc(defaultFail))
}

// SetFailCallback installs a process-wide callback invoked immediately
// before Fail aborts the process.
func SetFailCallback(fn FailFunc) {
	failCallback.Store(fn)
}

// FailError is the panic value Fail raises after invoking the callback.
type FailError struct {
	Kind FailKind
	Msg  string
}

func (e *FailError) Error() string { return e.Kind.String() + ": " + e.Msg }

// Fail invokes the registered fail callback and then panics. Every
// caller in this module treats Fail as non-returning.
func Fail(kind FailKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if fn, _ := failCallback.Load().(FailFunc); fn != nil {
		fn(kind, msg)
	}
	panic(&FailError{Kind: kind, Msg: msg})
}

func defaultFail(kind FailKind, msg string) {
	jlog.For("sysos").Error().Str("kind", kind.String()).Msg(msg)
}
