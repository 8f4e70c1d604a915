// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/BOXFoundation/ledgerd/storage"
)

type memorydb struct {
	sm sync.RWMutex
	db map[string][]byte
}

var _ storage.Storage = (*memorydb)(nil)

// Create or Get the table associated with the name
func (db *memorydb) Table(name string) (storage.Table, error) {
	return &mtable{memorydb: db, prefix: name + "."}, nil
}

// Drop the table associated with the name
func (db *memorydb) DropTable(name string) error {
	db.sm.Lock()
	defer db.sm.Unlock()

	prefix := name + "."
	for key := range db.db {
		if strings.HasPrefix(key, prefix) {
			delete(db.db, key)
		}
	}
	return nil
}

// create a new write batch
func (db *memorydb) NewBatch() storage.Batch {
	return &mbatch{memorydb: db}
}

func (db *memorydb) Close() error {
	db.sm.Lock()
	defer db.sm.Unlock()

	db.db = make(map[string][]byte)
	return nil
}

func (db *memorydb) put(key string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	db.db[key] = v
}

// put the value to entry associate with the key
func (db *memorydb) Put(key, value []byte) error {
	db.sm.Lock()
	defer db.sm.Unlock()

	db.put(string(key), value)
	return nil
}

// delete the entry associate with the key in the Storage
func (db *memorydb) Del(key []byte) error {
	db.sm.Lock()
	defer db.sm.Unlock()

	delete(db.db, string(key))
	return nil
}

// return value associate with the key in the Storage
func (db *memorydb) Get(key []byte) ([]byte, error) {
	db.sm.RLock()
	defer db.sm.RUnlock()

	if value, ok := db.db[string(key)]; ok {
		v := make([]byte, len(value))
		copy(v, value)
		return v, nil
	}
	return nil, nil
}

// check if the entry associate with key exists
func (db *memorydb) Has(key []byte) (bool, error) {
	db.sm.RLock()
	defer db.sm.RUnlock()

	_, ok := db.db[string(key)]
	return ok, nil
}

// keysWithPrefix returns the sorted keys starting with prefix, with the
// first strip bytes removed.
func (db *memorydb) keysWithPrefix(prefix string, strip int) [][]byte {
	db.sm.RLock()
	defer db.sm.RUnlock()

	var names []string
	for key := range db.db {
		if strings.HasPrefix(key, prefix) {
			names = append(names, key)
		}
	}
	sort.Strings(names)

	keys := make([][]byte, 0, len(names))
	for _, name := range names {
		keys = append(keys, []byte(name[strip:]))
	}
	return keys
}

func (db *memorydb) KeysWithPrefix(prefix []byte) [][]byte {
	return db.keysWithPrefix(string(prefix), 0)
}

// return a chan to iter all keys with specified prefix
func (db *memorydb) IterKeysWithPrefix(ctx context.Context, prefix []byte) <-chan []byte {
	return iterKeys(ctx, db.KeysWithPrefix(prefix))
}

func iterKeys(ctx context.Context, keys [][]byte) <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)

		for _, k := range keys {
			select {
			case out <- k:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
