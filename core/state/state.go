// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package state provides account views over the ledger and a
// copy-on-write overlay used for speculative block application.
package state

import (
	"sort"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/util"
)

// View reads account state. Missing accounts read as the zero account.
type View interface {
	GetAccount(addr types.Address) (*types.Account, error)
}

// Overlay records account writes on top of a base view without touching
// it. Overlays are not safe for concurrent use.
type Overlay struct {
	base  View
	dirty map[types.Address]*types.Account
}

var _ View = (*Overlay)(nil)

// NewOverlay creates an empty overlay over base.
func NewOverlay(base View) *Overlay {
	return &Overlay{
		base:  base,
		dirty: make(map[types.Address]*types.Account),
	}
}

// GetAccount returns a copy of the account as seen through the overlay.
func (o *Overlay) GetAccount(addr types.Address) (*types.Account, error) {
	if acc, ok := o.dirty[addr]; ok {
		cp := *acc
		return &cp, nil
	}
	return o.base.GetAccount(addr)
}

// SetAccount records a new value for addr.
func (o *Overlay) SetAccount(addr types.Address, acc *types.Account) {
	cp := *acc
	o.dirty[addr] = &cp
}

// Child creates a nested overlay whose writes reach o only on Merge.
func (o *Overlay) Child() *Overlay {
	return NewOverlay(o)
}

// Merge folds the writes of child, which must have been created by o.Child,
// into o.
func (o *Overlay) Merge(child *Overlay) {
	for addr, acc := range child.dirty {
		o.dirty[addr] = acc
	}
}

// Len returns the number of dirty accounts.
func (o *Overlay) Len() int {
	return len(o.dirty)
}

// Addresses returns the dirty addresses in byte order.
func (o *Overlay) Addresses() []types.Address {
	addrs := make([]types.Address, 0, len(o.dirty))
	for addr := range o.dirty {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	return addrs
}

// Dirty returns the account written for addr, if any.
func (o *Overlay) Dirty(addr types.Address) (*types.Account, bool) {
	acc, ok := o.dirty[addr]
	if !ok {
		return nil, false
	}
	cp := *acc
	return &cp, true
}

// Root chains the digest of the dirty set onto the parent state root. Two
// nodes applying the same blocks from the same genesis agree on it.
func (o *Overlay) Root(parent crypto.HashType) crypto.HashType {
	addrs := o.Addresses()
	leaves := make([]crypto.HashType, 0, len(addrs))
	for _, addr := range addrs {
		data, _ := o.dirty[addr].Marshal()
		leaves = append(leaves, crypto.DoubleHashH(append(addr.Bytes(), data...)))
	}
	return util.CombineHash(parent, util.MerkleRoot(leaves))
}

// MapView is an in-memory View, used for genesis and tests.
type MapView map[types.Address]types.Account

// GetAccount implements View.
func (m MapView) GetAccount(addr types.Address) (*types.Account, error) {
	acc := m[addr]
	return &acc, nil
}
