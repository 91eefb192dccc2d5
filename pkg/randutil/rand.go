// Package randutil builds the random sources used for value content, random
// probes and shuffles. A source is either seeded, and then fully
// reproducible, or seeded from the operating system.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source couples a ChaCha8 stream, used for bulk byte fills, with a
// rand.Rand drawing from the same stream.
type Source struct {
	stream *rand.ChaCha8
	*rand.Rand
}

// New returns a source seeded with seed, or an unpredictable one when seed
// is nil.
func New(seed *uint64) *Source {
	var s [32]byte
	if seed != nil {
		binary.BigEndian.PutUint64(s[:8], *seed)
	} else {
		// crypto/rand.Read never returns an error on supported platforms.
		_, _ = crand.Read(s[:])
	}
	stream := rand.NewChaCha8(s)
	return &Source{stream: stream, Rand: rand.New(stream)}
}

// NewSeeded is New with a fixed seed.
func NewSeeded(seed uint64) *Source {
	return New(&seed)
}

// Fill overwrites every byte of p with random content.
func (s *Source) Fill(p []byte) {
	_, _ = s.stream.Read(p)
}

// Derive returns an independent source for a named purpose. Seeded sources
// derive seeded children so that e.g. the noise fill does not perturb the
// probe sequence.
func Derive(seed *uint64, salt uint64) *Source {
	if seed == nil {
		return New(nil)
	}
	return NewSeeded(*seed ^ salt*0x9e3779b97f4a7c15)
}
