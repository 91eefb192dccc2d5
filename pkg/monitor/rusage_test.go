//go:build linux || darwin

package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeakRSS(t *testing.T) {
	rss, err := PeakRSS()
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))

	_, err = MajorFaults()
	require.NoError(t, err)
}
