// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/BOXFoundation/ledgerd/core/state"
	"github.com/BOXFoundation/ledgerd/core/types"
)

// heightView reads account state as of a committed height.
type heightView struct {
	chain  *BlockChain
	height uint64
}

var _ state.View = (*heightView)(nil)

// GetAccount returns a copy of the account as of the view height. Missing
// accounts are empty.
func (v *heightView) GetAccount(addr types.Address) (*types.Account, error) {
	if acc, ok := v.chain.cachedAccount(addr, v.height); ok {
		return acc, nil
	}
	acc, err := v.chain.loadAccount(addr, v.height)
	if err != nil {
		return nil, err
	}
	v.chain.cacheAccount(addr, v.height, acc)
	cp := *acc
	return &cp, nil
}

func (chain *BlockChain) cachedAccount(addr types.Address, height uint64) (*types.Account, bool) {
	chain.mtx.RLock()
	defer chain.mtx.RUnlock()
	if chain.head.Height() != height {
		return nil, false
	}
	v, ok := chain.statecache.Get(addr)
	if !ok {
		return nil, false
	}
	acc := *v.(*types.Account)
	return &acc, true
}

// cacheAccount only caches values read at the head, which commits keep
// up to date.
func (chain *BlockChain) cacheAccount(addr types.Address, height uint64, acc *types.Account) {
	chain.mtx.Lock()
	defer chain.mtx.Unlock()
	if chain.head.Height() == height {
		cp := *acc
		chain.statecache.Add(addr, &cp)
	}
}

// loadAccount returns the newest version of addr not above height.
func (chain *BlockChain) loadAccount(addr types.Address, height uint64) (*types.Account, error) {
	var (
		best  []byte
		found bool
		bestH uint64
	)
	for _, k := range chain.db.KeysWithPrefix(AccountPrefixOf(addr)) {
		h, err := heightOfVersionKey(k)
		if err != nil || h > height {
			continue
		}
		if !found || h >= bestH {
			best, bestH, found = k, h, true
		}
	}
	acc := &types.Account{}
	if !found {
		return acc, nil
	}
	data, err := chain.db.Get(best)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return acc, nil
	}
	if err := acc.Unmarshal(data); err != nil {
		return nil, err
	}
	return acc, nil
}
