package monitor

import (
	"fmt"
	"time"

	"github.com/codahale/hdrhistogram"
)

const (
	sigFigs    = 2
	minLatency = 50 * time.Nanosecond
	maxLatency = 10 * time.Second
)

// Latency records per-fetch latencies into an HDR histogram.
type Latency struct {
	h *hdrhistogram.Histogram
}

func NewLatency() *Latency {
	return &Latency{h: hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), sigFigs)}
}

// Record saves one datapoint, clamped to the trackable range.
func (l *Latency) Record(elapsed time.Duration) {
	if elapsed < minLatency {
		elapsed = minLatency
	} else if elapsed > maxLatency {
		elapsed = maxLatency
	}
	if err := l.h.RecordValue(elapsed.Nanoseconds()); err != nil {
		// values are clamped above, so this cannot happen
		panic(fmt.Sprintf("recording latency: %s", err))
	}
}

// LatencySummary is a snapshot of the recorded distribution.
type LatencySummary struct {
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func (l *Latency) Summary() LatencySummary {
	return LatencySummary{
		Count: l.h.TotalCount(),
		Mean:  time.Duration(l.h.Mean()),
		P50:   time.Duration(l.h.ValueAtQuantile(50)),
		P99:   time.Duration(l.h.ValueAtQuantile(99)),
		Max:   time.Duration(l.h.Max()),
	}
}
