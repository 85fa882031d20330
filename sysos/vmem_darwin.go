//go:build darwin

package sysos

// adviseHugePage is a best-effort hint; Darwin has no MADV_HUGEPAGE
// equivalent exposed via golang.org/x/sys/unix, so this is a no-op.
func adviseHugePage(b []byte) error { return nil }
