// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocksdb

import (
	"sync"

	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/tecbot/gorocksdb"
)

type rocksdb struct {
	rtable

	dboptions    *gorocksdb.Options
	flushOptions *gorocksdb.FlushOptions

	smcfhandlers sync.Mutex
	cfs          map[string]*gorocksdb.ColumnFamilyHandle
	tables       map[string]*rtable

	closeOnce sync.Once
	done      chan struct{}
}

var _ storage.Storage = (*rocksdb)(nil)

// Table creates or gets the column family associate with the name
func (db *rocksdb) Table(name string) (storage.Table, error) {
	db.smcfhandlers.Lock()
	defer db.smcfhandlers.Unlock()

	if t, ok := db.tables[name]; ok {
		return t, nil
	}

	cf, ok := db.cfs[name]
	if !ok {
		var err error
		cf, err = db.rocksdb.CreateColumnFamily(db.dboptions, name)
		if err != nil {
			return nil, err
		}
		db.cfs[name] = cf
	}

	t := &rtable{
		rocksdb:      db.rocksdb,
		cf:           cf,
		readOptions:  db.readOptions,
		writeOptions: db.writeOptions,
	}
	db.tables[name] = t
	return t, nil
}

// DropTable drops the column family associate with the name
func (db *rocksdb) DropTable(name string) error {
	db.smcfhandlers.Lock()
	defer db.smcfhandlers.Unlock()

	if cf, ok := db.cfs[name]; ok {
		err := db.rocksdb.DropColumnFamily(cf)
		delete(db.cfs, name)
		delete(db.tables, name)
		return err
	}
	return nil
}

// Close flushes memtables and releases the database
func (db *rocksdb) Close() error {
	var err error
	db.closeOnce.Do(func() {
		close(db.done)
		db.smcfhandlers.Lock()
		defer db.smcfhandlers.Unlock()

		err = db.rocksdb.Flush(db.flushOptions)
		for _, cf := range db.cfs {
			cf.Destroy()
		}
		db.rocksdb.Close()

		db.writeOptions.Destroy()
		db.readOptions.Destroy()
		db.flushOptions.Destroy()
		db.cfs = nil
		db.tables = nil
	})
	return err
}
