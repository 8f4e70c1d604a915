// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prover

import (
	"testing"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

func TestVerify(t *testing.T) {
	priv, pub, err := crypto.NewKeyPair()
	ensure.Nil(t, err)
	tx := &types.Transaction{Sender: types.NewAddressFromPubKey(pub), Program: ProgramNoop, Nonce: 1}
	ensure.Nil(t, Prove(tx, priv))

	p := New()
	ok, err := p.Verify(tx.Proof, PublicInputs(tx))
	ensure.Nil(t, err)
	ensure.True(t, ok)

	tampered := *tx
	tampered.Fee = 100
	ok, err = p.Verify(tampered.Proof, PublicInputs(&tampered))
	ensure.Nil(t, err)
	ensure.False(t, ok)

	_, err = p.Verify(tx.Proof, []byte{1})
	ensure.DeepEqual(t, err, ErrInvalidPublicIn)
}

func TestExecute(t *testing.T) {
	p := New()
	out, err := p.Execute(ProgramNoop, []byte("anything"))
	ensure.Nil(t, err)
	ensure.True(t, out == nil)

	var to types.Address
	to[0] = 1
	in, err := types.EncodeTransfers([]types.Transfer{{To: to, Amount: 9}})
	ensure.Nil(t, err)
	out, err = p.Execute(ProgramTransfer, in)
	ensure.Nil(t, err)
	transfers, err := types.DecodeTransfers(out)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, transfers, []types.Transfer{{To: to, Amount: 9}})

	_, err = p.Execute(ProgramTransfer, nil)
	ensure.DeepEqual(t, err, ErrEmptyTransferOut)
	_, err = p.Execute("mint", nil)
	ensure.DeepEqual(t, err, ErrUnknownProgram)
}
