//go:build linux

package sysos

import "golang.org/x/sys/unix"

func adviseHugePage(b []byte) error {
	return unix.Madvise(b, unix.MADV_HUGEPAGE)
}
