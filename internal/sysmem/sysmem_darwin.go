//go:build darwin

package sysmem

import "golang.org/x/sys/unix"

func total() (uint64, bool) {
	size, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, false
	}
	return size, true
}
