package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mmapbench/pkg/randutil"
)

func TestValueBufferLengthsStayBelowCapacity(t *testing.T) {
	b := NewValueBuffer(16, randutil.NewSeeded(1))
	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		v := b.Next()
		require.Less(t, len(v), 16)
		seen[len(v)] = true
	}
	// every length in [0, 16) shows up
	require.Len(t, seen, 16)
}

func TestValueBufferReusesBackingArray(t *testing.T) {
	b := NewValueBuffer(1024, randutil.NewSeeded(2))
	var first []byte
	for first = b.Next(); len(first) == 0; first = b.Next() {
	}
	second := b.Next()
	if len(second) > 0 {
		require.Same(t, &first[0], &second[0])
	}
	require.Equal(t, 1024, b.Cap())
}

func TestValueBufferCapacityOne(t *testing.T) {
	b := NewValueBuffer(1, randutil.NewSeeded(3))
	for i := 0; i < 10; i++ {
		require.Empty(t, b.Next())
	}
}

func TestValueBufferRejectsZeroCapacity(t *testing.T) {
	require.Panics(t, func() { NewValueBuffer(0, randutil.NewSeeded(4)) })
}
