// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memdb

import (
	"context"

	"github.com/BOXFoundation/ledgerd/storage"
)

type mtable struct {
	*memorydb

	prefix string
}

var _ storage.Table = (*mtable)(nil)

// create a new write batch
func (t *mtable) NewBatch() storage.Batch {
	return &mbatch{
		memorydb: t.memorydb,
		prefix:   t.prefix,
	}
}

func (t *mtable) realkey(key []byte) []byte {
	return append([]byte(t.prefix), key...)
}

func (t *mtable) Put(key, value []byte) error {
	return t.memorydb.Put(t.realkey(key), value)
}

func (t *mtable) Del(key []byte) error {
	return t.memorydb.Del(t.realkey(key))
}

func (t *mtable) Get(key []byte) ([]byte, error) {
	return t.memorydb.Get(t.realkey(key))
}

func (t *mtable) Has(key []byte) (bool, error) {
	return t.memorydb.Has(t.realkey(key))
}

func (t *mtable) KeysWithPrefix(prefix []byte) [][]byte {
	return t.keysWithPrefix(string(t.realkey(prefix)), len(t.prefix))
}

func (t *mtable) IterKeysWithPrefix(ctx context.Context, prefix []byte) <-chan []byte {
	return iterKeys(ctx, t.KeysWithPrefix(prefix))
}
