package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"mmapbench/pkg/common"
)

const sqliteFile = "data.sqlite"

// sqliteEngine keeps the dataset in a WITHOUT ROWID table, so entries live
// in a single B-tree ordered by the key blob. Reads go through SQLite's
// memory-mapped I/O, sized by mmap_size.
type sqliteEngine struct {
	db       *sql.DB
	path     string
	readOnly bool
}

func openSQLite(dir string, opts Options) (Engine, error) {
	path := filepath.Join(dir, sqliteFile)
	if opts.ReadOnly {
		// sqlite would silently create a new empty database
		if _, err := os.Stat(path); err != nil {
			return nil, common.StorageError(err, "no dataset")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// pragmas are per connection; keep exactly one
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	e := &sqliteEngine{db: db, path: path, readOnly: opts.ReadOnly}
	if err := e.init(opts); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

func (e *sqliteEngine) init(opts Options) error {
	if _, err := e.db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
	`); err != nil {
		return errors.Wrap(err, "set pragmas")
	}
	if opts.MapSize > 0 {
		if _, err := e.db.Exec(fmt.Sprintf("PRAGMA mmap_size = %d", opts.MapSize)); err != nil {
			return errors.Wrap(err, "set mmap_size")
		}
		var pageSize int64
		if err := e.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
			return errors.Wrap(err, "read page_size")
		}
		if _, err := e.db.Exec(fmt.Sprintf("PRAGMA max_page_count = %d", opts.MapSize/pageSize)); err != nil {
			return errors.Wrap(err, "set max_page_count")
		}
	}
	if opts.ReadOnly {
		_, err := e.db.Exec("PRAGMA query_only = ON")
		return errors.Wrap(err, "set query_only")
	}
	_, err := e.db.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		key BLOB PRIMARY KEY,
		value BLOB
	) WITHOUT ROWID;
	CREATE TABLE IF NOT EXISTS meta (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);`)
	return errors.Wrap(err, "create tables")
}

func (e *sqliteEngine) BeginWrite() (WriteTxn, error) {
	if e.readOnly {
		return nil, ErrReadOnly
	}
	tx, err := e.db.Begin()
	if err != nil {
		return nil, common.StorageError(err, "begin write transaction")
	}
	insert, err := tx.Prepare("INSERT OR IGNORE INTO entries (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, common.StorageError(err, "prepare insert")
	}
	update, err := tx.Prepare("UPDATE entries SET value = ? WHERE key = ?")
	if err != nil {
		tx.Rollback()
		return nil, common.StorageError(err, "prepare update")
	}
	return &sqliteWriteTxn{tx: tx, insert: insert, update: update}, nil
}

func (e *sqliteEngine) BeginRead() (ReadTxn, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, common.StorageError(err, "begin read transaction")
	}
	get, err := tx.Prepare("SELECT value FROM entries WHERE key = ?")
	if err != nil {
		tx.Rollback()
		return nil, sqliteError(err, "prepare get")
	}
	return &sqliteReadTxn{tx: tx, get: get}, nil
}

func (e *sqliteEngine) Close() error {
	return common.StorageError(e.db.Close(), "close sqlite store")
}

type sqliteWriteTxn struct {
	tx     *sql.Tx
	insert *sql.Stmt
	update *sql.Stmt
	added  int64
	// failed is set once a put errors. SQLite may already have rolled the
	// transaction back, so later statements would run in autocommit mode.
	failed bool
}

func (w *sqliteWriteTxn) Put(key, value []byte) error {
	if w.failed {
		return errTxDone
	}
	err := w.put(key, value)
	if err != nil {
		w.failed = true
	}
	return err
}

func (w *sqliteWriteTxn) put(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	res, err := w.insert.Exec(key, value)
	if err != nil {
		return sqliteError(err, "put")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sqliteError(err, "put")
	}
	if n > 0 {
		w.added += n
		return nil
	}
	_, err = w.update.Exec(value, key)
	return sqliteError(err, "put")
}

func (w *sqliteWriteTxn) Commit() error {
	if w.failed {
		_ = w.tx.Rollback()
		return errTxDone
	}
	_, err := w.tx.Exec(`
		INSERT INTO meta (name, value) VALUES ('entries', ?)
		ON CONFLICT (name) DO UPDATE SET value = value + excluded.value`, w.added)
	if err != nil {
		w.tx.Rollback()
		return sqliteError(err, "update entry count")
	}
	return sqliteError(w.tx.Commit(), "commit")
}

func (w *sqliteWriteTxn) Abort() error {
	err := w.tx.Rollback()
	if w.failed || errors.Is(err, sql.ErrTxDone) {
		// nothing left to roll back
		return nil
	}
	return sqliteError(err, "abort")
}

type sqliteReadTxn struct {
	tx  *sql.Tx
	get *sql.Stmt
}

func (r *sqliteReadTxn) Get(key []byte) ([]byte, bool, error) {
	var val []byte
	err := r.get.QueryRow(key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, sqliteError(err, "get")
	}
	return val, true, nil
}

func (r *sqliteReadTxn) Len() (uint64, error) {
	var n int64
	err := r.tx.QueryRow("SELECT value FROM meta WHERE name = 'entries'").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.tx.QueryRow("SELECT count(*) FROM entries").Scan(&n)
	}
	if err != nil {
		return 0, sqliteError(err, "count entries")
	}
	return uint64(n), nil
}

func (r *sqliteReadTxn) Iterate(fn func(key, value []byte) error) error {
	rows, err := r.tx.Query("SELECT key, value FROM entries ORDER BY key ASC")
	if err != nil {
		return sqliteError(err, "iterate")
	}
	defer rows.Close()

	for rows.Next() {
		var k, v sql.RawBytes
		if err := rows.Scan(&k, &v); err != nil {
			return sqliteError(err, "iterate")
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return sqliteError(rows.Err(), "iterate")
}

func (r *sqliteReadTxn) Release() error {
	return sqliteError(r.tx.Rollback(), "release read transaction")
}

// sqliteError marks err as a storage error, translating SQLITE_FULL into
// ErrMapFull.
func sqliteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL {
		return errors.Wrap(errors.WithSecondaryError(ErrMapFull, err), msg)
	}
	return common.StorageError(err, msg)
}
