//go:build linux || darwin

package monitor

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PeakRSS returns the peak resident set size of the current process in bytes.
func PeakRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	// ru_maxrss is kilobytes on linux and bytes on darwin
	if runtime.GOOS == "darwin" {
		return uint64(ru.Maxrss), nil
	}
	return uint64(ru.Maxrss) * 1024, nil
}

// MajorFaults returns the number of page faults that required I/O.
func MajorFaults() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	return uint64(ru.Majflt), nil
}
