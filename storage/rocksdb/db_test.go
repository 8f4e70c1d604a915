// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocksdb

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/facebookgo/ensure"
)

func TestRocksdbOperations(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledgerd-rocksdb")
	ensure.Nil(t, err)
	defer os.RemoveAll(dir)

	db, err := NewRocksDB(dir, nil)
	ensure.Nil(t, err)
	defer db.Close()

	ensure.Nil(t, db.Put([]byte("/a/1"), []byte("1")))
	ensure.Nil(t, db.Put([]byte("/a/2"), []byte("2")))
	ensure.Nil(t, db.Put([]byte("/b/1"), []byte("3")))

	v, err := db.Get([]byte("/a/2"))
	ensure.Nil(t, err)
	ensure.DeepEqual(t, v, []byte("2"))

	v, err = db.Get([]byte("/none"))
	ensure.Nil(t, err)
	ensure.True(t, v == nil)

	ensure.DeepEqual(t, db.KeysWithPrefix([]byte("/a/")), [][]byte{[]byte("/a/1"), []byte("/a/2")})

	batch := db.NewBatch()
	batch.Put([]byte("/c"), []byte("c"))
	batch.Del([]byte("/a/1"))
	ensure.DeepEqual(t, batch.Count(), 2)
	ensure.Nil(t, batch.Write())
	batch.Close()

	has, err := db.Has([]byte("/a/1"))
	ensure.Nil(t, err)
	ensure.False(t, has)
	has, _ = db.Has([]byte("/c"))
	ensure.True(t, has)
}

func TestRocksdbTable(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledgerd-rocksdb")
	ensure.Nil(t, err)
	defer os.RemoveAll(dir)

	db, err := NewRocksDB(dir, nil)
	ensure.Nil(t, err)
	defer db.Close()

	table, err := db.Table("chain")
	ensure.Nil(t, err)
	ensure.Nil(t, table.Put([]byte("k"), []byte("v")))

	has, _ := db.Has([]byte("k"))
	ensure.False(t, has)
	v, err := table.Get([]byte("k"))
	ensure.Nil(t, err)
	ensure.DeepEqual(t, v, []byte("v"))

	ensure.Nil(t, db.DropTable("chain"))
}
