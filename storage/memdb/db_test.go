// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memdb

import (
	"context"
	"testing"

	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/facebookgo/ensure"
	"github.com/jbenet/goprocess"
)

func newTestDB(t *testing.T) storage.Storage {
	db, err := NewMemoryDB("", nil)
	ensure.Nil(t, err)
	return db
}

func TestMemdbPutGetDel(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	v, err := db.Get([]byte("/k"))
	ensure.Nil(t, err)
	ensure.True(t, v == nil)

	ensure.Nil(t, db.Put([]byte("/k"), []byte("v")))
	v, err = db.Get([]byte("/k"))
	ensure.Nil(t, err)
	ensure.DeepEqual(t, v, []byte("v"))

	has, _ := db.Has([]byte("/k"))
	ensure.True(t, has)

	ensure.Nil(t, db.Del([]byte("/k")))
	has, _ = db.Has([]byte("/k"))
	ensure.False(t, has)
}

func TestMemdbBatch(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	db.Put([]byte("/gone"), []byte("x"))

	batch := db.NewBatch()
	defer batch.Close()
	batch.Put([]byte("/a"), []byte("1"))
	batch.Put([]byte("/b"), []byte("2"))
	batch.Del([]byte("/gone"))
	ensure.DeepEqual(t, batch.Count(), 3)

	// nothing is visible before Write
	has, _ := db.Has([]byte("/a"))
	ensure.False(t, has)

	ensure.Nil(t, batch.Write())
	v, _ := db.Get([]byte("/b"))
	ensure.DeepEqual(t, v, []byte("2"))
	has, _ = db.Has([]byte("/gone"))
	ensure.False(t, has)

	batch.Clear()
	ensure.DeepEqual(t, batch.Count(), 0)
}

func TestMemdbTablePrefix(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t1, err := db.Table("t1")
	ensure.Nil(t, err)
	t2, err := db.Table("t2")
	ensure.Nil(t, err)

	t1.Put([]byte("/x/2"), []byte("b"))
	t1.Put([]byte("/x/1"), []byte("a"))
	t1.Put([]byte("/y/1"), []byte("c"))
	t2.Put([]byte("/x/1"), []byte("z"))

	ensure.DeepEqual(t, t1.KeysWithPrefix([]byte("/x/")), [][]byte{[]byte("/x/1"), []byte("/x/2")})

	var iterated [][]byte
	for k := range t1.IterKeysWithPrefix(context.Background(), []byte("/x/")) {
		iterated = append(iterated, k)
	}
	ensure.DeepEqual(t, len(iterated), 2)

	v, _ := t2.Get([]byte("/x/1"))
	ensure.DeepEqual(t, v, []byte("z"))

	batch := t2.NewBatch()
	batch.Put([]byte("/w"), []byte("w"))
	ensure.Nil(t, batch.Write())
	has, _ := t2.Has([]byte("/w"))
	ensure.True(t, has)
	has, _ = t1.Has([]byte("/w"))
	ensure.False(t, has)

	ensure.Nil(t, db.DropTable("t1"))
	ensure.DeepEqual(t, len(t1.KeysWithPrefix([]byte("/"))), 0)
	ensure.DeepEqual(t, len(t2.KeysWithPrefix([]byte("/"))), 2)
}

func TestDatabaseLifecycle(t *testing.T) {
	parent := goprocess.Background()
	db, err := storage.NewDatabase(parent, &storage.Config{Name: Name})
	ensure.Nil(t, err)
	ensure.Nil(t, db.Put([]byte("/k"), []byte("v")))
	ensure.Nil(t, db.Close())

	_, err = storage.NewDatabase(parent, &storage.Config{Name: "nosuchdb"})
	ensure.NotNil(t, err)
}
