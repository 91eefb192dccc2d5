package monitor

// SizeAccounting is a running total of the logical bytes inserted or touched:
// key width plus value length per entry. It is owned by a single run and is
// not safe for concurrent use.
type SizeAccounting struct {
	bytes   uint64
	entries uint64
}

func NewSizeAccounting() *SizeAccounting {
	return &SizeAccounting{}
}

// Add records one entry and returns the new byte total.
func (s *SizeAccounting) Add(keyWidth, valueLen int) uint64 {
	s.bytes += uint64(keyWidth) + uint64(valueLen)
	s.entries++
	return s.bytes
}

func (s *SizeAccounting) Bytes() uint64 {
	return s.bytes
}

// Entries is the number of Add calls: insertions during generation, fetches
// during measurement.
func (s *SizeAccounting) Entries() uint64 {
	return s.entries
}

// Reached reports whether the total has reached target.
func (s *SizeAccounting) Reached(target uint64) bool {
	return s.bytes >= target
}
