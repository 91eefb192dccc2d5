package storage

const arenaChunk = 1 << 20

// arena hands out stable copies of short byte strings carved from large
// chunks. Engines that keep references to put arguments until commit copy
// them here, since callers reuse their buffers.
type arena struct {
	buf []byte
}

func (a *arena) copy(b []byte) []byte {
	if len(a.buf)+len(b) > cap(a.buf) {
		size := arenaChunk
		if len(b) > size {
			size = len(b)
		}
		a.buf = make([]byte, 0, size)
	}
	start := len(a.buf)
	a.buf = append(a.buf, b...)
	return a.buf[start:len(a.buf):len(a.buf)]
}

// leafOverhead approximates the per-entry page bookkeeping of a B+tree leaf.
const leafOverhead = 16

// budget tracks an estimate of the space used by a write transaction against
// the configured map size. Engines without a native size limit use it to fail
// the way a fixed-size mapping would.
type budget struct {
	limit int64
	used  int64
}

func (b *budget) charge(key, value []byte) error {
	if b.limit <= 0 {
		return nil
	}
	b.used += int64(len(key) + len(value) + leafOverhead)
	if b.used > b.limit {
		return ErrMapFull
	}
	return nil
}
