package storage

import (
	"bytes"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"

	"mmapbench/pkg/common"
)

type memItem struct {
	key []byte
	val []byte
}

func (i memItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(memItem).key) < 0
}

// memoryEngine keeps entries in an in-process B-tree. Transactions work on
// copy-on-write clones, so a read transaction sees a fixed snapshot and an
// aborted write leaves nothing behind. Nothing is persisted: dir is ignored.
type memoryEngine struct {
	lock     sync.Mutex
	tree     *btree.BTree
	writing  bool
	readOnly bool
	mapSize  int64
}

func openMemory(_ string, opts Options) (Engine, error) {
	if opts.ReadOnly {
		// a fresh process has nothing to read
		return nil, errors.Mark(errors.New("no dataset: the memory engine does not persist data"), common.ErrStorage)
	}
	return NewMemory(opts), nil
}

// NewMemory returns an empty in-memory engine.
func NewMemory(opts Options) Engine {
	return &memoryEngine{
		tree:     btree.New(32),
		readOnly: opts.ReadOnly,
		mapSize:  opts.MapSize,
	}
}

func (e *memoryEngine) BeginWrite() (WriteTxn, error) {
	if e.readOnly {
		return nil, ErrReadOnly
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.writing {
		return nil, errWriterBusy
	}
	e.writing = true
	return &memoryWriteTxn{
		engine: e,
		tree:   e.tree.Clone(),
		budget: budget{limit: e.mapSize},
	}, nil
}

func (e *memoryEngine) BeginRead() (ReadTxn, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return &memoryReadTxn{tree: e.tree.Clone()}, nil
}

func (e *memoryEngine) Close() error {
	return nil
}

type memoryWriteTxn struct {
	engine *memoryEngine
	tree   *btree.BTree
	arena  arena
	budget budget
	done   bool
}

func (w *memoryWriteTxn) Put(key, value []byte) error {
	if w.done {
		return errTxDone
	}
	if err := w.budget.charge(key, value); err != nil {
		return err
	}
	w.tree.ReplaceOrInsert(memItem{key: w.arena.copy(key), val: w.arena.copy(value)})
	return nil
}

func (w *memoryWriteTxn) Commit() error {
	if w.done {
		return errTxDone
	}
	w.done = true
	w.engine.lock.Lock()
	defer w.engine.lock.Unlock()
	w.engine.tree = w.tree
	w.engine.writing = false
	return nil
}

func (w *memoryWriteTxn) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.engine.lock.Lock()
	defer w.engine.lock.Unlock()
	w.engine.writing = false
	return nil
}

type memoryReadTxn struct {
	tree *btree.BTree
}

func (r *memoryReadTxn) Get(key []byte) ([]byte, bool, error) {
	res := r.tree.Get(memItem{key: key})
	if res == nil {
		return nil, false, nil
	}
	return res.(memItem).val, true, nil
}

func (r *memoryReadTxn) Len() (uint64, error) {
	return uint64(r.tree.Len()), nil
}

func (r *memoryReadTxn) Iterate(fn func(key, value []byte) error) error {
	var err error
	r.tree.Ascend(func(i btree.Item) bool {
		item := i.(memItem)
		err = fn(item.key, item.val)
		return err == nil
	})
	return err
}

func (r *memoryReadTxn) Release() error {
	return nil
}
