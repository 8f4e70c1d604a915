// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prover

import (
	"errors"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
)

// built-in programs
const (
	ProgramTransfer = "transfer"
	ProgramNoop     = "noop"
)

// error
var (
	ErrUnknownProgram   = errors.New("unknown program")
	ErrInvalidPublicIn  = errors.New("public inputs must be a 32 bytes hash followed by a 20 bytes address")
	ErrEmptyTransferOut = errors.New("transfer program needs at least one transfer")
)

// SignatureProver proves a transaction by a compact secp256k1 signature of
// the sender over the transaction signing hash.
type SignatureProver struct{}

var _ core.Prover = (*SignatureProver)(nil)

// New returns the default prover.
func New() *SignatureProver {
	return &SignatureProver{}
}

// PublicInputs returns the public inputs Verify expects for tx.
func PublicInputs(tx *types.Transaction) []byte {
	hash := tx.SigningHash()
	in := make([]byte, 0, crypto.HashSize+types.AddressLength)
	in = append(in, hash[:]...)
	return append(in, tx.Sender[:]...)
}

// Verify checks that proof is a signature over the hash in publicInputs by
// the key whose hash160 follows it.
func (p *SignatureProver) Verify(proof, publicInputs []byte) (bool, error) {
	if len(publicInputs) != crypto.HashSize+types.AddressLength {
		return false, ErrInvalidPublicIn
	}
	var hash crypto.HashType
	copy(hash[:], publicInputs[:crypto.HashSize])
	return crypto.VerifyCompact(proof, hash, publicInputs[crypto.HashSize:]), nil
}

// Execute runs program on inputs. transfer validates and re-encodes its
// transfer list; noop outputs nothing.
func (p *SignatureProver) Execute(program string, inputs []byte) ([]byte, error) {
	switch program {
	case ProgramNoop:
		return nil, nil
	case ProgramTransfer:
		transfers, err := types.DecodeTransfers(inputs)
		if err != nil {
			return nil, err
		}
		if len(transfers) == 0 {
			return nil, ErrEmptyTransferOut
		}
		return types.EncodeTransfers(transfers)
	default:
		return nil, ErrUnknownProgram
	}
}

// Prove signs tx with priv, filling its Proof.
func Prove(tx *types.Transaction, priv *crypto.PrivateKey) error {
	sig, err := crypto.SignCompact(priv, tx.SigningHash())
	if err != nil {
		return err
	}
	tx.Proof = sig
	return nil
}
