package access

import "mmapbench/pkg/randutil"

// AllocateNoise returns a buffer of size bytes with every byte overwritten by
// random content. Writing each page forces the kernel to back the buffer
// with real memory instead of the shared zero page, so it competes with the
// dataset's mapping for resident pages. Callers keep it alive for the
// duration of the traversal and never read it.
func AllocateNoise(size uint64, rng *randutil.Source) []byte {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	rng.Fill(buf)
	return buf
}
