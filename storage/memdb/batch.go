// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memdb

import (
	"sync"

	"github.com/BOXFoundation/ledgerd/storage"
)

// write is one queued change; a nil value deletes the key.
type write struct {
	key   string
	value []byte
}

// mbatch queues writes under the table prefix and applies them under the
// db lock, so readers never see half a batch.
type mbatch struct {
	*memorydb

	mtx    sync.Mutex
	prefix string
	writes []write
}

var _ storage.Batch = (*mbatch)(nil)

func (b *mbatch) queue(key []byte, value []byte) {
	b.mtx.Lock()
	b.writes = append(b.writes, write{key: b.prefix + string(key), value: value})
	b.mtx.Unlock()
}

func (b *mbatch) Put(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	b.queue(key, value)
}

func (b *mbatch) Del(key []byte) {
	b.queue(key, nil)
}

func (b *mbatch) Clear() {
	b.mtx.Lock()
	b.writes = nil
	b.mtx.Unlock()
}

func (b *mbatch) Count() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return len(b.writes)
}

// Write applies the queued writes in order.
func (b *mbatch) Write() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.sm.Lock()
	defer b.sm.Unlock()
	for _, w := range b.writes {
		if w.value == nil {
			delete(b.db, w.key)
			continue
		}
		b.put(w.key, w.value)
	}
	return nil
}

func (b *mbatch) Close() {
	b.Clear()
}
