// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import (
	"testing"

	"github.com/facebookgo/ensure"
)

func TestRipemd160(t *testing.T) {
	expectDigest := []byte{156, 17, 133, 165, 197, 233, 252, 84, 97, 40, 8, 151, 126, 232, 245, 72, 178, 37, 141, 49}
	ensure.DeepEqual(t, Ripemd160([]byte("")), expectDigest)
}

func TestSha256(t *testing.T) {
	expectDigest := []byte{227, 176, 196, 66, 152, 252, 28, 20, 154, 251, 244, 200, 153, 111, 185, 36, 39, 174, 65, 228, 100, 155, 147, 76, 164, 149, 153, 27, 120, 82, 184, 85}
	ensure.DeepEqual(t, Sha256([]byte("")), expectDigest)
	ensure.DeepEqual(t, Sha256Multi([]byte("ledger"), []byte("d")), Sha256([]byte("ledgerd")))
}

func TestHashSetString(t *testing.T) {
	hexString := "7c3040dcb540cc57f8c4ed08dbcfba807434dc861c94a1c161b099f58d9ebe6d"
	hash, err := NewHashFromStr(hexString)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, hash.String(), hexString)

	_, err = NewHashFromStr("123x")
	ensure.NotNil(t, err)
	_, err = NewHashFromStr("1234")
	ensure.DeepEqual(t, err, ErrInvalidHashLength)
}

func TestHashLessAndEqual(t *testing.T) {
	a := DoubleHashH([]byte("a"))
	b := DoubleHashH([]byte("b"))
	ensure.True(t, a.Less(b) != b.Less(a))
	ensure.False(t, a.Less(a))
	c := a
	ensure.True(t, a.IsEqual(&c))
	ensure.False(t, a.IsEqual(&b))
	ensure.True(t, (*HashType)(nil).IsEqual(nil))
}

func TestHash160Length(t *testing.T) {
	ensure.DeepEqual(t, len(Hash160([]byte("ledgerd"))), AddressSize)
}
