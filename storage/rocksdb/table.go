// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocksdb

import (
	"context"

	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/tecbot/gorocksdb"
)

// rtable is a column family. A nil cf addresses the default family.
type rtable struct {
	rocksdb      *gorocksdb.DB
	cf           *gorocksdb.ColumnFamilyHandle
	readOptions  *gorocksdb.ReadOptions
	writeOptions *gorocksdb.WriteOptions
}

var _ storage.Table = (*rtable)(nil)

func (t *rtable) NewBatch() storage.Batch {
	return newBatch(t)
}

func (t *rtable) Put(key, value []byte) error {
	if t.cf == nil {
		return t.rocksdb.Put(t.writeOptions, key, value)
	}
	return t.rocksdb.PutCF(t.writeOptions, t.cf, key, value)
}

func (t *rtable) Del(key []byte) error {
	if t.cf == nil {
		return t.rocksdb.Delete(t.writeOptions, key)
	}
	return t.rocksdb.DeleteCF(t.writeOptions, t.cf, key)
}

func (t *rtable) Get(key []byte) ([]byte, error) {
	var value *gorocksdb.Slice
	var err error
	if t.cf == nil {
		value, err = t.rocksdb.Get(t.readOptions, key)
	} else {
		value, err = t.rocksdb.GetCF(t.readOptions, t.cf, key)
	}
	if err != nil {
		return nil, err
	}
	return data(value), nil
}

func (t *rtable) Has(key []byte) (bool, error) {
	value, err := t.Get(key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

func (t *rtable) newIterator() *gorocksdb.Iterator {
	if t.cf == nil {
		return t.rocksdb.NewIterator(t.readOptions)
	}
	return t.rocksdb.NewIteratorCF(t.readOptions, t.cf)
}

func (t *rtable) KeysWithPrefix(prefix []byte) [][]byte {
	iter := t.newIterator()
	defer iter.Close()

	var keys [][]byte
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		keys = append(keys, data(iter.Key()))
	}
	return keys
}

func (t *rtable) IterKeysWithPrefix(ctx context.Context, prefix []byte) <-chan []byte {
	iter := t.newIterator()

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			select {
			case <-ctx.Done():
				return
			case out <- data(iter.Key()):
			}
		}
	}()
	return out
}
