//go:build !linux

package sysos

// currentKernelTID has no portable, cheap equivalent outside Linux; we
// report it as unsupported rather than fabricate an unstable value.
// Thread.ID() and Thread.SetPriority depend on it, so on these
// platforms Thread.ID() reports false and SetPriority does nothing.
func currentKernelTID() (int32, bool) { return 0, false }

func setThreadPriority(tid int32, p ThreadPriority) error { return nil }
