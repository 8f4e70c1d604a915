// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package key

import (
	"bytes"
	"testing"

	"github.com/facebookgo/ensure"
)

func TestKeyAncestry(t *testing.T) {
	k1 := NewKey("/A/B/C")
	k2 := NewKey("/A/B/C/D")

	ensure.DeepEqual(t, k1.String(), "/A/B/C")
	ensure.True(t, k1.IsAncestorOf(k2))
	ensure.True(t, NewKey("/A").IsAncestorOf(k1))
	ensure.False(t, k2.IsAncestorOf(k1))
	ensure.False(t, k1.IsAncestorOf(k1))
	ensure.DeepEqual(t, k1.ChildString("D").String(), k2.String())
	ensure.DeepEqual(t, k2.Parent().String(), k1.String())
	ensure.DeepEqual(t, NewKey("A").Parent().String(), "/")
	ensure.DeepEqual(t, NewKeyWithPaths("bk", "x").String(), "/bk/x")
	ensure.DeepEqual(t, string(NewKey("/bh").Prefix()), "/bh/")
}

func TestLess(t *testing.T) {
	checkLess := func(a, b string) {
		ak := NewKey(a)
		bk := NewKey(b)
		ensure.True(t, ak.Less(bk))
		ensure.False(t, bk.Less(ak))
	}

	checkLess("/a/b/c", "/a/b/c/d")
	checkLess("/a/a/c", "/a/b/c")
	checkLess("/a/b/c/d/e/f/g/h", "/b")
	checkLess("/", "/a")
}

func TestChildUint64SortsNumerically(t *testing.T) {
	base := NewKey("/bh")
	k9 := base.ChildUint64(9)
	k10 := base.ChildUint64(10)
	k300 := base.ChildUint64(300)

	ensure.True(t, bytes.Compare(k9.Bytes(), k10.Bytes()) < 0)
	ensure.True(t, bytes.Compare(k10.Bytes(), k300.Bytes()) < 0)

	n, err := k300.BaseUint64()
	ensure.Nil(t, err)
	ensure.DeepEqual(t, n, uint64(300))

	ensure.DeepEqual(t, base.ChildBytes([]byte{0xab, 0x01}).String(), "/bh/ab01")
}
