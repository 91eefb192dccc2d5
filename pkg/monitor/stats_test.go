package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSizeAccounting(t *testing.T) {
	s := NewSizeAccounting()
	require.False(t, s.Reached(1))
	require.Equal(t, uint64(8), s.Add(8, 0))
	require.Equal(t, uint64(8+8+1015), s.Add(8, 1015))
	require.Equal(t, uint64(2), s.Entries())
	require.True(t, s.Reached(1031))
	require.False(t, s.Reached(1032))
}

func TestLatencySummary(t *testing.T) {
	l := NewLatency()
	for i := 1; i <= 100; i++ {
		l.Record(time.Duration(i) * time.Microsecond)
	}
	l.Record(time.Nanosecond) // clamped up
	l.Record(time.Hour)       // clamped down

	s := l.Summary()
	require.Equal(t, int64(102), s.Count)
	require.InDelta(t, float64(50*time.Microsecond), float64(s.P50), float64(2*time.Microsecond))
	require.LessOrEqual(t, s.Max, maxLatency+maxLatency/50)
}
