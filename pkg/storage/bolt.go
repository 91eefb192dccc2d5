package storage

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"

	"mmapbench/pkg/common"
)

const boltFile = "data.db"

var (
	boltMainBucket = []byte("main")
	boltMetaBucket = []byte("meta")
	boltEntriesKey = []byte("entries")
)

// boltEngine stores the dataset in a bbolt file: a single memory-mapped
// B+tree with one writer and any number of readers.
type boltEngine struct {
	db      *bolt.DB
	mapSize int64
}

func openBolt(dir string, opts Options) (Engine, error) {
	path := filepath.Join(dir, boltFile)
	if opts.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, common.StorageError(err, "no dataset")
		}
	}
	bopts := &bolt.Options{
		Timeout:        time.Second,
		ReadOnly:       opts.ReadOnly,
		NoFreelistSync: true,
		FreelistType:   bolt.FreelistMapType,
	}
	if opts.MapSize > 0 {
		bopts.InitialMmapSize = int(opts.MapSize)
	}
	db, err := bolt.Open(path, 0o644, bopts)
	if err != nil {
		return nil, err
	}
	return &boltEngine{db: db, mapSize: opts.MapSize}, nil
}

func (e *boltEngine) BeginWrite() (WriteTxn, error) {
	if e.db.IsReadOnly() {
		return nil, ErrReadOnly
	}
	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, common.StorageError(err, "begin write transaction")
	}
	main, err := tx.CreateBucketIfNotExists(boltMainBucket)
	if err != nil {
		_ = tx.Rollback()
		return nil, common.StorageError(err, "create main bucket")
	}
	// keys arrive in ascending order, so leaves can be packed full
	main.FillPercent = 1.0
	meta, err := tx.CreateBucketIfNotExists(boltMetaBucket)
	if err != nil {
		_ = tx.Rollback()
		return nil, common.StorageError(err, "create meta bucket")
	}
	return &boltWriteTxn{
		tx:     tx,
		main:   main,
		meta:   meta,
		budget: budget{limit: e.mapSize},
	}, nil
}

func (e *boltEngine) BeginRead() (ReadTxn, error) {
	tx, err := e.db.Begin(false)
	if err != nil {
		return nil, common.StorageError(err, "begin read transaction")
	}
	main := tx.Bucket(boltMainBucket)
	if main == nil {
		_ = tx.Rollback()
		return nil, errors.Mark(errors.Newf("%s holds no dataset", e.db.Path()), common.ErrStorage)
	}
	return &boltReadTxn{tx: tx, main: main, meta: tx.Bucket(boltMetaBucket)}, nil
}

func (e *boltEngine) Close() error {
	return common.StorageError(e.db.Close(), "close bolt store")
}

type boltWriteTxn struct {
	tx     *bolt.Tx
	main   *bolt.Bucket
	meta   *bolt.Bucket
	arena  arena
	budget budget
	added  uint64
}

func (w *boltWriteTxn) Put(key, value []byte) error {
	if err := w.budget.charge(key, value); err != nil {
		return err
	}
	if !boltHas(w.main, key) {
		w.added++
	}
	// bolt keeps references to key and value until commit, so the arena
	// grows to the logical size of the transaction
	k, v := w.arena.copy(key), w.arena.copy(value)
	return common.StorageError(w.main.Put(k, v), "put")
}

func (w *boltWriteTxn) Commit() error {
	var prev uint64
	if b := w.meta.Get(boltEntriesKey); len(b) == 8 {
		prev = binary.BigEndian.Uint64(b)
	}
	if err := w.meta.Put(boltEntriesKey, binary.BigEndian.AppendUint64(nil, prev+w.added)); err != nil {
		_ = w.tx.Rollback()
		return common.StorageError(err, "update entry count")
	}
	return common.StorageError(w.tx.Commit(), "commit")
}

func (w *boltWriteTxn) Abort() error {
	err := w.tx.Rollback()
	if errors.Is(err, bolt.ErrTxClosed) {
		return nil
	}
	return common.StorageError(err, "abort")
}

type boltReadTxn struct {
	tx   *bolt.Tx
	main *bolt.Bucket
	meta *bolt.Bucket
}

func (r *boltReadTxn) Get(key []byte) ([]byte, bool, error) {
	v, ok := boltSeek(r.main, key)
	return v, ok, nil
}

func (r *boltReadTxn) Len() (uint64, error) {
	if r.meta != nil {
		if b := r.meta.Get(boltEntriesKey); len(b) == 8 {
			return binary.BigEndian.Uint64(b), nil
		}
	}
	// written by something other than this harness; counting walks the tree
	return uint64(r.main.Stats().KeyN), nil
}

func (r *boltReadTxn) Iterate(fn func(key, value []byte) error) error {
	c := r.main.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *boltReadTxn) Release() error {
	return common.StorageError(r.tx.Rollback(), "release read transaction")
}

// boltSeek looks key up through a cursor, which unlike Bucket.Get tells an
// empty value apart from a missing key.
func boltSeek(b *bolt.Bucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

func boltHas(b *bolt.Bucket, key []byte) bool {
	_, ok := boltSeek(b, key)
	return ok
}
