package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mmapbench/pkg/randutil"
)

func TestAllocateNoiseFillsEveryPage(t *testing.T) {
	const pageSize = 4096
	buf := AllocateNoise(1<<20, randutil.NewSeeded(1))
	require.Len(t, buf, 1<<20)

	for off := 0; off < len(buf); off += pageSize {
		page := buf[off : off+pageSize]
		zero := true
		for _, c := range page {
			if c != 0 {
				zero = false
				break
			}
		}
		require.False(t, zero, "page at offset %d was left zeroed", off)
	}
}

func TestAllocateNoiseEmpty(t *testing.T) {
	require.Nil(t, AllocateNoise(0, randutil.NewSeeded(1)))
}
