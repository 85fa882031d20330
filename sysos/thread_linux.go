//go:build linux

package sysos

import "golang.org/x/sys/unix"

// currentKernelTID returns the real Linux thread id of the calling OS
// thread. Stable for the life of a goroutine pinned with
// runtime.LockOSThread, since Gettid is a syscall against the current
// thread, not the current goroutine.
func currentKernelTID() (int32, bool) {
	return int32(unix.Gettid()), true
}

// niceFor maps Junkyard's priority classes onto setpriority(2) niceness,
// -20 (highest) .. 19 (lowest).
func niceFor(p ThreadPriority) int {
	switch p {
	case PriorityRealtime:
		return -20
	case PriorityHigh:
		return -10
	case PriorityNormal:
		return 0
	case PriorityLow:
		return 10
	case PriorityIdle:
		return 19
	default:
		return 0
	}
}

func setThreadPriority(tid int32, p ThreadPriority) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(tid), niceFor(p))
}
