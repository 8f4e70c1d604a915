// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chaintest opens in-memory ledgers for the tests of the services
// built on top of chain.
package chaintest

import (
	"context"
	"testing"

	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/testutil"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/core/validator"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/storage/memdb"
	"github.com/facebookgo/ensure"
	"github.com/jbenet/goprocess"
)

// InitialBalance is the genesis balance of every funded key.
const InitialBalance = 1000000

// Env is a genesis shared by all the ledgers a test opens.
type Env struct {
	Validator  *validator.Validator
	Validators []*testutil.Key
	Funded     []*testutil.Key
	Genesis    *chain.GenesisConfig
}

// NewEnv creates an environment with nValidators equal weight validators
// and nFunded funded accounts.
func NewEnv(t *testing.T, nValidators, nFunded int) *Env {
	v, err := validator.New(&validator.Config{}, prover.New())
	ensure.Nil(t, err)
	env := &Env{
		Validator:  v,
		Validators: testutil.NewKeys(nValidators),
		Funded:     testutil.NewKeys(nFunded),
		Genesis:    &chain.GenesisConfig{Timestamp: 1},
	}
	for _, k := range env.Validators {
		env.Genesis.Validators = append(env.Genesis.Validators,
			chain.GenesisValidator{Address: k.Addr.String(), Weight: 1})
	}
	for _, k := range env.Funded {
		env.Genesis.Balances = append(env.Genesis.Balances,
			chain.GenesisBalance{Address: k.Addr.String(), Balance: InitialBalance})
	}
	return env
}

// Open opens a fresh in-memory ledger on bus.
func (env *Env) Open(t *testing.T, bus eventbus.Bus) *chain.BlockChain {
	db, err := memdb.NewMemoryDB("", nil)
	ensure.Nil(t, err)
	c, err := chain.NewBlockChain(goprocess.Background(), db, env.Validator, bus, &chain.Config{}, env.Genesis)
	ensure.Nil(t, err)
	return c
}

// NextBlock builds a block with txs on top of the head of c, certified by
// a quorum of the validators.
func (env *Env) NextBlock(t *testing.T, c *chain.BlockChain, txs ...*types.Transaction) *types.Block {
	head := c.HeadBlock()
	block, err := env.Validator.BuildBlock(context.Background(), head, c.StateView(),
		testutil.Wrap(txs...), env.Validators[0], 0, c.ValidatorSet(), head.Header.TimeStamp+1)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(block.Txs), len(txs))
	testutil.Certify(block, env.Validators[:Quorum(len(env.Validators))])
	return block
}

// Extend commits n blocks of txs produced by gen onto c.
func (env *Env) Extend(t *testing.T, c *chain.BlockChain, n int, gen func(height uint64) []*types.Transaction) []*types.Block {
	blocks := make([]*types.Block, 0, n)
	for i := 0; i < n; i++ {
		var txs []*types.Transaction
		if gen != nil {
			txs = gen(c.HeadBlock().Height() + 1)
		}
		block := env.NextBlock(t, c, txs...)
		ensure.Nil(t, c.ApplyAndCommit(context.Background(), block))
		blocks = append(blocks, block)
	}
	return blocks
}

// Quorum is the smallest number of equal weight votes out of n that make a
// quorum.
func Quorum(n int) int {
	return n*2/3 + 1
}
