package dataset

import "mmapbench/pkg/randutil"

// ValueBuffer produces random values of random length from one reusable
// backing array, so that allocation does not dominate the cost of a load.
type ValueBuffer struct {
	buf []byte
	rng *randutil.Source
}

// NewValueBuffer returns a buffer whose values are strictly shorter than
// capacity. capacity must be at least 1.
func NewValueBuffer(capacity int, rng *randutil.Source) *ValueBuffer {
	if capacity < 1 {
		panic("dataset: value buffer capacity must be at least 1")
	}
	return &ValueBuffer{buf: make([]byte, capacity), rng: rng}
}

// Next returns a value whose length is uniform in [0, capacity) and whose
// content is uniformly random. The slice aliases the backing array and is
// overwritten by the following call.
func (b *ValueBuffer) Next() []byte {
	n := b.rng.IntN(len(b.buf))
	v := b.buf[:n]
	b.rng.Fill(v)
	return v
}

// Cap is the exclusive upper bound on value lengths.
func (b *ValueBuffer) Cap() int {
	return len(b.buf)
}
