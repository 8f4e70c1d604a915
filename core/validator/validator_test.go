// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/state"
	"github.com/BOXFoundation/ledgerd/core/testutil"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/facebookgo/ensure"
)

type countingProver struct {
	core.Prover
	calls int32
}

func (p *countingProver) Verify(proof, publicInputs []byte) (bool, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.Prover.Verify(proof, publicInputs)
}

func newTestValidator(t *testing.T) (*Validator, *countingProver) {
	p := &countingProver{Prover: prover.New()}
	v, err := New(&Config{Workers: 2}, p)
	ensure.Nil(t, err)
	return v, p
}

func reasonOf(t *testing.T, err error) core.RejectReason {
	reason, ok := core.RejectReasonOf(err)
	ensure.True(t, ok)
	return reason
}

func genesis() *types.Block {
	return &types.Block{Header: &types.BlockHeader{TimeStamp: 1}}
}

func TestCheckStructure(t *testing.T) {
	v, _ := newTestValidator(t)
	alice, bob := testutil.NewKey(), testutil.NewKey()

	ensure.Nil(t, v.CheckStructure(alice.Transfer(bob.Addr, 1, 1, 1)))

	noProof := alice.Transfer(bob.Addr, 1, 1, 1)
	noProof.Proof = nil
	ensure.DeepEqual(t, reasonOf(t, v.CheckStructure(noProof)), core.Malformed)

	noSender := &types.Transaction{Program: "noop", Proof: []byte{1}, Nonce: 1}
	ensure.DeepEqual(t, reasonOf(t, v.CheckStructure(noSender)), core.Malformed)

	zeroNonce := alice.Noop(0, 0)
	ensure.DeepEqual(t, reasonOf(t, v.CheckStructure(zeroNonce)), core.Malformed)

	big := alice.Noop(0, 1)
	big.Inputs = make([]byte, DefaultMaxTxSize)
	ensure.DeepEqual(t, reasonOf(t, v.CheckStructure(big)), core.Malformed)
}

func TestVerifyProofCached(t *testing.T) {
	v, p := newTestValidator(t)
	alice, bob := testutil.NewKey(), testutil.NewKey()
	tx := alice.Transfer(bob.Addr, 1, 1, 1)

	ensure.Nil(t, v.VerifyProof(context.Background(), tx))
	ensure.Nil(t, v.VerifyProof(context.Background(), tx))
	ensure.DeepEqual(t, atomic.LoadInt32(&p.calls), int32(1))

	forged := *tx
	forged.Sender = bob.Addr
	err := v.VerifyProof(context.Background(), &forged)
	ensure.DeepEqual(t, reasonOf(t, err), core.ProofInvalid)
}

func TestVerifyProofsFanOut(t *testing.T) {
	v, p := newTestValidator(t)
	alice, bob := testutil.NewKey(), testutil.NewKey()
	var txs []*types.Transaction
	for i := uint64(1); i <= 16; i++ {
		txs = append(txs, alice.Transfer(bob.Addr, i, 1, i))
	}
	ensure.Nil(t, v.VerifyProofs(context.Background(), txs))
	ensure.DeepEqual(t, atomic.LoadInt32(&p.calls), int32(16))

	bad := *txs[3]
	bad.Proof = txs[4].Proof
	txs[3] = &bad
	err := v.VerifyProofs(context.Background(), txs)
	ensure.DeepEqual(t, reasonOf(t, err), core.ProofInvalid)
}

func TestCheckStateStrictness(t *testing.T) {
	v, _ := newTestValidator(t)
	alice, bob := testutil.NewKey(), testutil.NewKey()
	view := state.MapView{alice.Addr: {Balance: 10, Nonce: 2}}

	next := alice.Transfer(bob.Addr, 5, 1, 3)
	ensure.Nil(t, v.CheckState(next, view, true))
	ensure.Nil(t, v.CheckState(next, view, false))

	future := alice.Transfer(bob.Addr, 5, 1, 5)
	ensure.DeepEqual(t, reasonOf(t, v.CheckState(future, view, true)), core.StateConflict)
	ensure.Nil(t, v.CheckState(future, view, false))

	used := alice.Transfer(bob.Addr, 5, 1, 2)
	ensure.DeepEqual(t, reasonOf(t, v.CheckState(used, view, false)), core.DuplicateOrExpired)

	tooMuch := alice.Transfer(bob.Addr, 10, 1, 3)
	ensure.DeepEqual(t, reasonOf(t, v.CheckState(tooMuch, view, false)), core.StateConflict)
}

func TestApplyBlock(t *testing.T) {
	v, _ := newTestValidator(t)
	keys := testutil.NewKeys(4)
	vs := testutil.ValidatorSet(1, keys)
	alice, bob := testutil.NewKey(), testutil.NewKey()
	base := state.MapView{alice.Addr: {Balance: 100}}
	parent := genesis()

	candidates := testutil.Wrap(
		alice.Transfer(bob.Addr, 10, 2, 1),
		alice.Transfer(bob.Addr, 500, 2, 2), // cannot afford, dropped
		alice.Transfer(bob.Addr, 20, 3, 2),
	)
	block, err := v.BuildBlock(context.Background(), parent, base, candidates, keys[0], 0, vs, 5)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(block.Txs), 2)

	overlay, err := v.ApplyBlock(context.Background(), block, parent, base, vs)
	ensure.Nil(t, err)
	acc, _ := overlay.GetAccount(alice.Addr)
	ensure.DeepEqual(t, *acc, types.Account{Balance: 65, Nonce: 2})
	acc, _ = overlay.GetAccount(bob.Addr)
	ensure.DeepEqual(t, acc.Balance, uint64(30))
	acc, _ = overlay.GetAccount(keys[0].Addr)
	ensure.DeepEqual(t, acc.Balance, uint64(5))
	// the base is untouched
	ensure.DeepEqual(t, base[alice.Addr].Balance, uint64(100))

	testutil.Certify(block, keys[:3])
	ensure.Nil(t, v.VerifyCertificate(block, vs))
	testutil.Certify(block, keys[:2])
	ensure.NotNil(t, v.VerifyCertificate(block, vs))
}

func TestApplyBlockRejects(t *testing.T) {
	v, _ := newTestValidator(t)
	keys := testutil.NewKeys(4)
	vs := testutil.ValidatorSet(1, keys)
	alice, bob := testutil.NewKey(), testutil.NewKey()
	base := state.MapView{alice.Addr: {Balance: 100}}
	parent := genesis()
	ctx := context.Background()

	build := func() *types.Block {
		block, err := v.BuildBlock(ctx, parent, base,
			testutil.Wrap(alice.Transfer(bob.Addr, 10, 2, 1)), keys[1], 0, vs, 5)
		ensure.Nil(t, err)
		return block
	}
	resign := func(b *types.Block, k *testutil.Key) {
		hash := b.Hash()
		b.Signature, _ = k.Sign(hash[:])
	}

	wrongRoot := build()
	wrongRoot.Header.StateRoot[0] ^= 0xff
	resign(wrongRoot, keys[1])
	_, err := v.ApplyBlock(ctx, wrongRoot, parent, base, vs)
	ensure.DeepEqual(t, reasonOf(t, err), core.StateConflict)

	badSig := build()
	resign(badSig, keys[2])
	_, err = v.ApplyBlock(ctx, badSig, parent, base, vs)
	ensure.DeepEqual(t, reasonOf(t, err), core.ProofInvalid)

	wrongParent := build()
	wrongParent.Header.PrevBlockHash[0] ^= 0xff
	resign(wrongParent, keys[1])
	_, err = v.ApplyBlock(ctx, wrongParent, parent, base, vs)
	ensure.DeepEqual(t, reasonOf(t, err), core.Malformed)

	stranger := testutil.NewKey()
	outsider, err := v.BuildBlock(ctx, parent, base, nil, stranger, 0, vs, 5)
	ensure.Nil(t, err)
	_, err = v.ApplyBlock(ctx, outsider, parent, base, vs)
	ensure.DeepEqual(t, reasonOf(t, err), core.Malformed)

	replay := build()
	replay.Txs = append(replay.Txs, replay.Txs[0])
	replay.Header.TxsRoot = replay.CalcTxsRoot()
	resign(replay, keys[1])
	_, err = v.ApplyBlock(ctx, replay, parent, base, vs)
	ensure.DeepEqual(t, reasonOf(t, err), core.Malformed)

	oldSet := testutil.ValidatorSet(2, keys)
	_, err = v.ApplyBlock(ctx, build(), parent, base, oldSet)
	ensure.DeepEqual(t, reasonOf(t, err), core.StateConflict)
}
