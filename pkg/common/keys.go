package common

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// KeyWidth is the encoded width of every key, in bytes.
const KeyWidth = 8

// KeyCodec turns logical keys into fixed-width byte strings whose
// byte-lexicographic order matches the numeric order of the keys in [0, N).
type KeyCodec interface {
	Name() string
	Encode(dst []byte, k KeyType) []byte
	Decode(b []byte) (KeyType, error)
}

type uint64BE struct{}

// Uint64BE encodes keys as unsigned 64-bit big-endian integers.
var Uint64BE KeyCodec = uint64BE{}

func (uint64BE) Name() string { return "uint64" }

func (uint64BE) Encode(dst []byte, k KeyType) []byte {
	return binary.BigEndian.AppendUint64(dst[:0], uint64(k))
}

func (uint64BE) Decode(b []byte) (KeyType, error) {
	if len(b) != KeyWidth {
		return 0, errors.Newf("key is %d bytes, want %d", len(b), KeyWidth)
	}
	return KeyType(binary.BigEndian.Uint64(b)), nil
}

type int64BE struct{}

// Int64BE encodes keys as signed 64-bit two's complement big-endian
// integers. It is order preserving only for non-negative keys, which is all
// the generator ever produces, and for those it yields the same bytes as
// Uint64BE.
var Int64BE KeyCodec = int64BE{}

func (int64BE) Name() string { return "int64" }

func (int64BE) Encode(dst []byte, k KeyType) []byte {
	return binary.BigEndian.AppendUint64(dst[:0], uint64(int64(k)))
}

func (int64BE) Decode(b []byte) (KeyType, error) {
	if len(b) != KeyWidth {
		return 0, errors.Newf("key is %d bytes, want %d", len(b), KeyWidth)
	}
	v := int64(binary.BigEndian.Uint64(b))
	if v < 0 {
		return 0, errors.Newf("negative key %d", v)
	}
	return KeyType(v), nil
}

// CodecByName returns the codec registered under name ("uint64" or "int64").
func CodecByName(name string) (KeyCodec, error) {
	switch name {
	case "", "uint64", "u64":
		return Uint64BE, nil
	case "int64", "i64":
		return Int64BE, nil
	}
	return nil, errors.Mark(errors.Newf("unknown key encoding %q", name), ErrConfig)
}
