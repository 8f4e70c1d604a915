// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"testing"

	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

type record struct {
	Height uint64
	Hash   crypto.HashType
	Data   []byte
	Tags   []string
	next   *record
}

func TestPrettyPrint(t *testing.T) {
	hash := crypto.DoubleHashH([]byte("block"))
	ensure.DeepEqual(t, PrettyPrint(hash), hash.String())
	ensure.DeepEqual(t, PrettyPrint(uint32(7)), "7")
	ensure.DeepEqual(t, PrettyPrint([]byte{0xab, 0x01}), "0xab01")

	r := &record{Height: 3, Hash: hash, Data: []byte{0xff}, Tags: []string{"a"}}
	expect := "record\nHeight:\t3\nHash:\t" + hash.String() + "\nData:\t0xff\nTags:\tArray\n--0:\ta"
	ensure.DeepEqual(t, PrettyPrint(r), expect)

	var nilRecord *record
	ensure.DeepEqual(t, PrettyPrint(nilRecord), "Nil")
}
