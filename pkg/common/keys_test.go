package common

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestKeyCodecsPreserveOrder(t *testing.T) {
	keys := []KeyType{0, 1, 255, 256, 65535, 1 << 32, 1<<63 - 1}
	for _, codec := range []KeyCodec{Uint64BE, Int64BE} {
		t.Run(codec.Name(), func(t *testing.T) {
			var prev []byte
			for _, k := range keys {
				enc := codec.Encode(nil, k)
				require.Len(t, enc, KeyWidth)
				if prev != nil && bytes.Compare(prev, enc) >= 0 {
					t.Fatalf("encoding of %d does not sort after its predecessor", k)
				}
				got, err := codec.Decode(enc)
				require.NoError(t, err)
				require.Equal(t, k, got)
				prev = enc
			}
		})
	}
}

func TestSignedAndUnsignedAgreeOnNonNegativeKeys(t *testing.T) {
	for _, k := range []KeyType{0, 7, 1 << 40} {
		require.Equal(t, Uint64BE.Encode(nil, k), Int64BE.Encode(nil, k))
	}
}

func TestDecodeRejectsBadWidth(t *testing.T) {
	_, err := Uint64BE.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("int64")
	require.NoError(t, err)
	require.Equal(t, "int64", c.Name())

	_, err = CodecByName("varint")
	require.True(t, errors.Is(err, ErrConfig))
}

func TestRecordSize(t *testing.T) {
	require.Equal(t, KeyWidth, Record{Key: 3}.Size())
	rec := Record{Key: 4, Value: make([]byte, 1015)}
	require.Equal(t, 1023, rec.Size())
	require.Equal(t, "Record{Key: 4, ValLen: 1015}", rec.String())
}
