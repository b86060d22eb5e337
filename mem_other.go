//go:build !linux

package parsim

// systemMemory is unknown outside of linux.
func systemMemory() uint64 { return 0 }
