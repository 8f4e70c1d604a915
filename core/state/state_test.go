// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package state

import (
	"testing"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

func addr(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func TestOverlayCopyOnWrite(t *testing.T) {
	base := MapView{addr(1): {Balance: 100, Nonce: 1}}
	o := NewOverlay(base)

	acc, err := o.GetAccount(addr(1))
	ensure.Nil(t, err)
	acc.Balance = 10
	// mutating a read copy changes nothing
	again, _ := o.GetAccount(addr(1))
	ensure.DeepEqual(t, again.Balance, uint64(100))

	o.SetAccount(addr(1), acc)
	got, _ := o.GetAccount(addr(1))
	ensure.DeepEqual(t, got.Balance, uint64(10))
	ensure.DeepEqual(t, base[addr(1)].Balance, uint64(100))

	missing, _ := o.GetAccount(addr(9))
	ensure.DeepEqual(t, *missing, types.Account{})
}

func TestOverlayChildMerge(t *testing.T) {
	o := NewOverlay(MapView{})
	o.SetAccount(addr(1), &types.Account{Balance: 5})

	child := o.Child()
	child.SetAccount(addr(2), &types.Account{Balance: 7})
	_, ok := o.Dirty(addr(2))
	ensure.False(t, ok)

	dropped := o.Child()
	dropped.SetAccount(addr(3), &types.Account{Balance: 1})

	o.Merge(child)
	ensure.DeepEqual(t, o.Len(), 2)
	ensure.DeepEqual(t, o.Addresses(), []types.Address{addr(1), addr(2)})
}

func TestOverlayRootDeterministic(t *testing.T) {
	parent := crypto.DoubleHashH([]byte("parent"))

	a := NewOverlay(MapView{})
	a.SetAccount(addr(2), &types.Account{Balance: 2})
	a.SetAccount(addr(1), &types.Account{Balance: 1})

	b := NewOverlay(MapView{})
	b.SetAccount(addr(1), &types.Account{Balance: 1})
	b.SetAccount(addr(2), &types.Account{Balance: 2})

	ensure.DeepEqual(t, a.Root(parent), b.Root(parent))

	b.SetAccount(addr(2), &types.Account{Balance: 3})
	ensure.NotDeepEqual(t, a.Root(parent), b.Root(parent))
	ensure.NotDeepEqual(t, a.Root(parent), a.Root(crypto.ZeroHash))
}
