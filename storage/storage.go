// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrStorageNotFound is returned for an unregistered driver name.
var ErrStorageNotFound = errors.New("storage driver not found")

// Reader is the read side of a table. Get returns nil, nil for a missing
// key.
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// KeysWithPrefix returns the matching keys in key order.
	KeysWithPrefix(prefix []byte) [][]byte
	// IterKeysWithPrefix streams the matching keys until ctx is done.
	IterKeysWithPrefix(ctx context.Context, prefix []byte) <-chan []byte
}

// Writer is the write side of a table. Single writes are not atomic with
// each other; use a Batch for that.
type Writer interface {
	Put(key, value []byte) error
	Del(key []byte) error
}

// Batch queues writes and applies them atomically. A ledger commit goes
// through exactly one batch, so a crash leaves either all of a block's
// indices or none of them.
type Batch interface {
	Put(key, value []byte)
	Del(key []byte)

	// Clear drops the queued writes.
	Clear()
	Count() int
	Write() error

	// Close releases the batch. It must be called.
	Close()
}

// Table is a key namespace within a Storage.
type Table interface {
	Reader
	Writer
	NewBatch() Batch
}

// Storage is a database engine: a root table plus named tables.
type Storage interface {
	Table

	Table(name string) (Table, error)
	DropTable(name string) error

	Close() error
}

// Options are engine specific settings, passed through from the config.
type Options map[string]interface{}

// newDBFunc opens an engine at a path.
type newDBFunc func(string, *Options) (Storage, error)

var (
	dbfuncs   = make(map[string]newDBFunc)
	dbfuncMtx sync.Mutex
)

// Register makes an engine available under name. Engines register
// themselves in init.
func Register(name string, fn newDBFunc) {
	dbfuncMtx.Lock()
	defer dbfuncMtx.Unlock()
	dbfuncs[name] = fn
}

func newStorage(name string, path string, o *Options) (Storage, error) {
	dbfuncMtx.Lock()
	fn, ok := dbfuncs[name]
	dbfuncMtx.Unlock()
	if !ok {
		return nil, errors.Wrap(ErrStorageNotFound, name)
	}
	return fn(path, o)
}
