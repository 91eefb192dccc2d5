// Package storage adapts memory-mapped and in-memory key-value engines to
// the narrow interface the harness needs: open, one read or write
// transaction, put, get, ordered iteration and cardinality.
package storage

import (
	"sort"

	"github.com/cockroachdb/errors"

	"mmapbench/pkg/common"
)

// Engine is an opened key-value store. At most one transaction is used at a
// time.
type Engine interface {
	BeginRead() (ReadTxn, error)
	BeginWrite() (WriteTxn, error)
	Close() error
}

// ReadTxn is a consistent read-only view.
type ReadTxn interface {
	// Get returns the value stored under key. The slice is only valid until
	// the transaction is released.
	Get(key []byte) ([]byte, bool, error)
	// Len is the number of entries. It does not scan the data.
	Len() (uint64, error)
	// Iterate visits every entry in ascending byte order of the key. A
	// non-nil error from fn stops the iteration and is returned.
	Iterate(fn func(key, value []byte) error) error
	Release() error
}

// WriteTxn buffers puts until Commit. Abort discards everything.
type WriteTxn interface {
	Put(key, value []byte) error
	Commit() error
	Abort() error
}

// Options controls how an engine is opened.
type Options struct {
	// MapSize is the size of the address space reserved for the data
	// mapping, in bytes. Zero lets the engine choose.
	MapSize int64
	// ReadOnly opens an existing store without write access.
	ReadOnly bool
}

// Opener opens the store located in dir.
type Opener func(dir string, opts Options) (Engine, error)

var engines = map[string]Opener{
	"bolt":   openBolt,
	"sqlite": openSQLite,
	"memory": openMemory,
}

// DefaultEngine is used when no engine is configured.
const DefaultEngine = "bolt"

// Names lists the available engines.
func Names() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens the named engine on dir.
func Open(name string, dir string, opts Options) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	open, ok := engines[name]
	if !ok {
		return nil, common.ConfigError("unknown engine %q (available: %v)", name, Names())
	}
	eng, err := open(dir, opts)
	if err != nil {
		if errors.Is(err, common.ErrStorage) {
			return nil, err
		}
		return nil, common.StorageError(err, "open "+name+" store at "+dir)
	}
	return eng, nil
}

// ErrReadOnly is returned when a write transaction is requested on a store
// opened read-only.
var ErrReadOnly = errors.Mark(errors.New("store is opened read-only"), common.ErrStorage)

// ErrMapFull is returned when the data outgrows the configured map size.
var ErrMapFull = errors.Mark(errors.New("mapped address space exhausted"), common.ErrStorage)

var (
	errWriterBusy = errors.Mark(errors.New("another write transaction is open"), common.ErrStorage)
	errTxDone     = errors.Mark(errors.New("transaction already finished"), common.ErrStorage)
)
