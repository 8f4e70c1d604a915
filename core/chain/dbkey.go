// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/storage/key"
)

const (
	// BlockTableName is the table name of db to store ledger data
	BlockTableName = "core"

	// Head is the db key name of the committed head block hash. It is
	// written after, and separately from, the block batch.
	Head = "/head"

	// Genesis is the db key name of genesis block hash
	Genesis = "/genesis"

	// ValidatorSetKey is the db key name of the current validator set
	ValidatorSetKey = "/vs"

	// BlockPrefix is the key prefix of database key to store block content
	// /bk/{hex encoded block hash}
	// e.g.
	// key: /bk/005973c44c4879b137c3723c96d2e341eeaf83fe58845b2975556c9f3bd640bb
	// value: block binary
	BlockPrefix = "/bk"

	// BlockHashPrefix is the key prefix of database key to store block hash of specified height
	// /bh/{fixed width hex encoded height}
	// e.g.
	// key: /bh/0000000000003e2d
	// value: block hash binary
	BlockHashPrefix = "/bh"

	// TxIndexPrefix is the key prefix of database key to store tx index
	// /ti/{hex encoded tx hash}
	// value: corepb.TxIndex{height, index in txs}
	TxIndexPrefix = "/ti"

	// AccountPrefix is the key prefix of versioned account state
	// /ac/{hex encoded address}/{fixed width hex encoded height}
	// value: account binary as of that height
	AccountPrefix = "/ac"
)

var blkBase = key.NewKey(BlockPrefix)
var blkHashBase = key.NewKey(BlockHashPrefix)
var txixBase = key.NewKey(TxIndexPrefix)
var accountBase = key.NewKey(AccountPrefix)

// HeadKey is the key of the head marker
var HeadKey = []byte(Head)

// GenesisKey is the key of the genesis block hash
var GenesisKey = []byte(Genesis)

// BlockKey returns the db key to store block content
func BlockKey(h crypto.HashType) []byte {
	return blkBase.ChildBytes(h[:]).Bytes()
}

// BlockHashKey returns the db key to store block hash content
func BlockHashKey(height uint64) []byte {
	return blkHashBase.ChildUint64(height).Bytes()
}

// TxIndexKey returns the db key to store tx index
func TxIndexKey(h crypto.HashType) []byte {
	return txixBase.ChildBytes(h[:]).Bytes()
}

// AccountKey returns the db key of the version of addr written at height
func AccountKey(addr types.Address, height uint64) []byte {
	return accountBase.ChildBytes(addr[:]).ChildUint64(height).Bytes()
}

// AccountPrefixOf returns the prefix of all versions of addr
func AccountPrefixOf(addr types.Address) []byte {
	return accountBase.ChildBytes(addr[:]).Prefix()
}

// heightOfVersionKey parses the height of an AccountKey or BlockHashKey.
func heightOfVersionKey(k []byte) (uint64, error) {
	return key.NewKey(string(k)).BaseUint64()
}
