package config

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ByteSize is a size in bytes that parses from plain integers or
// human-readable strings such as "256MiB" or "5 GB".
type ByteSize uint64

// ParseByteSize parses s with IEC and SI unit suffixes.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return ByteSize(n), nil
}

func (b ByteSize) Bytes() uint64 { return uint64(b) }

// String renders the size in IEC units, e.g. "5.0 GiB".
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Set implements pflag.Value.
func (b *ByteSize) Set(s string) error {
	n, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = n
	return nil
}

// Type implements pflag.Value.
func (b *ByteSize) Type() string { return "bytes" }

// UnmarshalYAML accepts both numbers and size strings.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	if n, err := strconv.ParseUint(value.Value, 10, 64); err == nil {
		*b = ByteSize(n)
		return nil
	}
	return b.Set(value.Value)
}

// MarshalYAML writes the exact byte count.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return uint64(b), nil
}
