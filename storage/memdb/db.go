// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memdb

import (
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/storage"
)

var logger = log.NewLogger("memdb")

// Name is the registered driver name
const Name = "memdb"

func init() {
	storage.Register(Name, NewMemoryDB)
}

// NewMemoryDB creates a memorydb instance
func NewMemoryDB(_ string, _ *storage.Options) (storage.Storage, error) {
	logger.Debug("Creating memdb")
	return &memorydb{
		db: make(map[string][]byte),
	}, nil
}
