//go:build !linux && !darwin

package monitor

import "github.com/cockroachdb/errors"

func PeakRSS() (uint64, error) {
	return 0, errors.New("peak RSS is not available on this platform")
}

func MajorFaults() (uint64, error) {
	return 0, errors.New("fault counters are not available on this platform")
}
