// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocksdb

import (
	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/tecbot/gorocksdb"
)

// rbatch wraps a rocksdb WriteBatch bound to one column family.
type rbatch struct {
	t  *rtable
	wb *gorocksdb.WriteBatch
}

var _ storage.Batch = (*rbatch)(nil)

func newBatch(t *rtable) *rbatch {
	return &rbatch{t: t, wb: gorocksdb.NewWriteBatch()}
}

func (b *rbatch) Put(key, value []byte) {
	if b.t.cf == nil {
		b.wb.Put(key, value)
		return
	}
	b.wb.PutCF(b.t.cf, key, value)
}

func (b *rbatch) Del(key []byte) {
	if b.t.cf == nil {
		b.wb.Delete(key)
		return
	}
	b.wb.DeleteCF(b.t.cf, key)
}

func (b *rbatch) Clear()     { b.wb.Clear() }
func (b *rbatch) Count() int { return b.wb.Count() }
func (b *rbatch) Close()     { b.wb.Destroy() }

// Write applies every queued write in one rocksdb write.
func (b *rbatch) Write() error {
	return b.t.rocksdb.Write(b.t.writeOptions, b.wb)
}
