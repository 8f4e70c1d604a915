// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package testutil builds signed ledger objects for tests.
package testutil

import (
	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
)

// Key is an in-memory account.
type Key struct {
	Priv *crypto.PrivateKey
	Addr types.Address
}

var _ core.Account = (*Key)(nil)

// NewKey generates a key, panicking on failure.
func NewKey() *Key {
	priv, pub, err := crypto.NewKeyPair()
	if err != nil {
		panic(err)
	}
	return &Key{Priv: priv, Addr: types.NewAddressFromPubKey(pub)}
}

// NewKeys generates n keys.
func NewKeys(n int) []*Key {
	keys := make([]*Key, n)
	for i := range keys {
		keys[i] = NewKey()
	}
	return keys
}

// Address implements core.Account.
func (k *Key) Address() types.Address { return k.Addr }

// Sign implements core.Account.
func (k *Key) Sign(payload []byte) ([]byte, error) {
	var hash crypto.HashType
	if err := hash.SetBytes(payload); err != nil {
		return nil, err
	}
	return crypto.SignCompact(k.Priv, hash)
}

// Transfer returns a proved transfer of amount to to.
func (k *Key) Transfer(to types.Address, amount, fee, nonce uint64) *types.Transaction {
	inputs, err := types.EncodeTransfers([]types.Transfer{{To: to, Amount: amount}})
	if err != nil {
		panic(err)
	}
	tx := &types.Transaction{
		Sender:  k.Addr,
		Program: prover.ProgramTransfer,
		Inputs:  inputs,
		Fee:     fee,
		Nonce:   nonce,
	}
	k.Prove(tx)
	return tx
}

// Noop returns a proved noop transaction.
func (k *Key) Noop(fee, nonce uint64) *types.Transaction {
	tx := &types.Transaction{Sender: k.Addr, Program: prover.ProgramNoop, Fee: fee, Nonce: nonce}
	k.Prove(tx)
	return tx
}

// Prove (re)computes the proof of tx.
func (k *Key) Prove(tx *types.Transaction) {
	if err := prover.Prove(tx, k.Priv); err != nil {
		panic(err)
	}
}

// Vote returns a signed vote.
func (k *Key) Vote(height uint64, round uint32, hash crypto.HashType) *types.Vote {
	v := &types.Vote{Height: height, Round: round, BlockHash: hash, Voter: k.Addr}
	sig, err := crypto.SignCompact(k.Priv, v.SigningHash())
	if err != nil {
		panic(err)
	}
	v.Signature = sig
	return v
}

// ValidatorSet returns an equal-weight set of keys.
func ValidatorSet(version uint64, keys []*Key) *types.ValidatorSet {
	validators := make([]types.Validator, 0, len(keys))
	for _, k := range keys {
		validators = append(validators, types.Validator{Address: k.Addr, Weight: 1})
	}
	vs, err := types.NewValidatorSet(version, validators)
	if err != nil {
		panic(err)
	}
	return vs
}

// Certify attaches a certificate signed by voters to block.
func Certify(block *types.Block, voters []*Key) {
	hash := block.Hash()
	cert := &types.Certificate{Height: block.Height(), Round: block.Header.Round, BlockHash: hash}
	for _, k := range voters {
		cert.Votes = append(cert.Votes, k.Vote(block.Height(), block.Header.Round, hash))
	}
	block.Certificate = cert
}

// Wrap wraps txs as validated mempool entries.
func Wrap(txs ...*types.Transaction) []*types.TxWrap {
	wraps := make([]*types.TxWrap, 0, len(txs))
	for i, tx := range txs {
		w := types.NewTxWrap(tx, int64(i))
		w.Validated = true
		wraps = append(wraps, w)
	}
	return wraps
}
