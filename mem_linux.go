package parsim

import (
	"golang.org/x/sys/unix"
)

// systemMemory returns the smaller of physical memory and the process's
// address-space rlimit, or 0 if neither can be read.
func systemMemory() uint64 {
	var limit uint64

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		limit = uint64(info.Totalram) * uint64(info.Unit)
	}

	var rlim unix.Rlimit
	err := unix.Getrlimit(unix.RLIMIT_AS, &rlim)
	if err == nil && rlim.Cur != ^uint64(0) {
		if limit == 0 || rlim.Cur < limit {
			limit = rlim.Cur
		}
	}

	return limit
}
