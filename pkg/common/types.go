package common

import "fmt"

// KeyType is the logical key of a dataset entry. Keys form the contiguous
// range [0, N).
type KeyType uint64

// ValueType is an opaque value.
type ValueType []byte

// Record is one stored entry.
type Record struct {
	Key   KeyType
	Value ValueType
}

// Size is the logical size of the record: encoded key width plus value length.
func (r Record) Size() int {
	return KeyWidth + len(r.Value)
}

func (r Record) String() string {
	return fmt.Sprintf("Record{Key: %d, ValLen: %d}", r.Key, len(r.Value))
}
