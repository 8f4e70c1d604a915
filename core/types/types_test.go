// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	"math"
	"testing"

	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

type testKey struct {
	priv *crypto.PrivateKey
	addr Address
}

func newTestKey(t *testing.T) testKey {
	priv, pub, err := crypto.NewKeyPair()
	ensure.Nil(t, err)
	return testKey{priv: priv, addr: NewAddressFromPubKey(pub)}
}

func (k testKey) vote(t *testing.T, height uint64, round uint32, hash crypto.HashType) *Vote {
	v := &Vote{Height: height, Round: round, BlockHash: hash, Voter: k.addr}
	sig, err := crypto.SignCompact(k.priv, v.SigningHash())
	ensure.Nil(t, err)
	v.Signature = sig
	return v
}

func TestAddressString(t *testing.T) {
	k := newTestKey(t)
	parsed, err := ParseAddress(k.addr.String())
	ensure.Nil(t, err)
	ensure.DeepEqual(t, parsed, k.addr)

	_, err = NewAddress([]byte{1, 2})
	ensure.DeepEqual(t, err, ErrInvalidAddressLength)
	_, err = ParseAddress(crypto.Base58CheckEncode(make([]byte, 22)))
	ensure.DeepEqual(t, err, ErrInvalidAddressPrefix)
}

func TestTransactionHash(t *testing.T) {
	k := newTestKey(t)
	tx := &Transaction{Sender: k.addr, Program: "noop", Fee: 3, Nonce: 1}
	signing := tx.SigningHash()
	hash := tx.Hash()

	tx.Proof = []byte{1, 2, 3}
	ensure.DeepEqual(t, tx.SigningHash(), signing)
	ensure.NotDeepEqual(t, tx.Hash(), hash)

	data, err := tx.Marshal()
	ensure.Nil(t, err)
	decoded := new(Transaction)
	ensure.Nil(t, decoded.Unmarshal(data))
	ensure.DeepEqual(t, decoded.Hash(), tx.Hash())
	ensure.DeepEqual(t, decoded.Sender, k.addr)
	ensure.DeepEqual(t, NewTxWrap(tx, 10).Size, len(data))

	ensure.False(t, tx.Expired(100))
	tx.Expiry = 50
	ensure.True(t, tx.Expired(100))
	ensure.False(t, tx.Expired(49))
}

func TestBlockHashIgnoresSignatureAndCertificate(t *testing.T) {
	k := newTestKey(t)
	genesis := &Block{Header: &BlockHeader{TimeStamp: 1}}
	block := NewBlock(genesis)
	block.Header.Proposer = k.addr
	block.Txs = []*Transaction{{Sender: k.addr, Program: "noop", Nonce: 1}}
	block.Header.TxsRoot = block.CalcTxsRoot()

	ensure.DeepEqual(t, block.Height(), uint64(1))
	ensure.DeepEqual(t, block.Header.PrevBlockHash, genesis.Hash())

	hash := block.Hash()
	sig, err := crypto.SignCompact(k.priv, hash)
	ensure.Nil(t, err)
	block.Signature = sig
	ensure.True(t, block.VerifySignature())

	block.Certificate = &Certificate{Height: 1, BlockHash: hash, Votes: []*Vote{k.vote(t, 1, 0, hash)}}
	ensure.DeepEqual(t, block.Hash(), hash)

	data, err := block.Marshal()
	ensure.Nil(t, err)
	decoded := new(Block)
	ensure.Nil(t, decoded.Unmarshal(data))
	ensure.DeepEqual(t, decoded.Hash(), hash)
	ensure.DeepEqual(t, len(decoded.Txs), 1)
	ensure.DeepEqual(t, decoded.Certificate.BlockHash, hash)
	ensure.True(t, decoded.VerifySignature())

	other := newTestKey(t)
	decoded.Header.Proposer = other.addr
	ensure.False(t, decoded.VerifySignature())
}

func TestValidatorSet(t *testing.T) {
	a, b := newTestKey(t), newTestKey(t)
	_, err := NewValidatorSet(1, nil)
	ensure.DeepEqual(t, err, ErrEmptyValidatorSet)
	_, err = NewValidatorSet(1, []Validator{{a.addr, 1}, {a.addr, 2}})
	ensure.DeepEqual(t, err, ErrDuplicateValidator)
	_, err = NewValidatorSet(1, []Validator{{a.addr, 0}})
	ensure.DeepEqual(t, err, ErrZeroWeightValidator)

	vs, err := NewValidatorSet(7, []Validator{{a.addr, 1}, {b.addr, 2}})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, vs.TotalWeight(), uint64(3))
	ensure.DeepEqual(t, vs.WeightOf(b.addr), uint64(2))
	ensure.False(t, vs.IsQuorum(2))
	ensure.True(t, vs.IsQuorum(3))

	msg, err := vs.ToProtoMessage()
	ensure.Nil(t, err)
	decoded := new(ValidatorSet)
	ensure.Nil(t, decoded.FromProtoMessage(msg))
	ensure.DeepEqual(t, decoded.Version(), uint64(7))
	ensure.DeepEqual(t, decoded.Validators(), vs.Validators())
}

func TestValidatorSetWeightOverflow(t *testing.T) {
	a, b := newTestKey(t), newTestKey(t)
	_, err := NewValidatorSet(1, []Validator{{a.addr, math.MaxUint64}, {b.addr, 1}})
	ensure.DeepEqual(t, err, ErrWeightOverflow)
	_, err = NewValidatorSet(1, []Validator{{a.addr, maxTotalWeight}, {b.addr, 1}})
	ensure.DeepEqual(t, err, ErrWeightOverflow)

	vs, err := NewValidatorSet(1, []Validator{{a.addr, maxTotalWeight - 1}, {b.addr, 1}})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, vs.TotalWeight(), uint64(maxTotalWeight))
	ensure.True(t, vs.IsQuorum(maxTotalWeight-1))
	ensure.False(t, vs.IsQuorum(maxTotalWeight/2))
}

func TestCertificateVerify(t *testing.T) {
	keys := []testKey{newTestKey(t), newTestKey(t), newTestKey(t), newTestKey(t)}
	var validators []Validator
	for _, k := range keys {
		validators = append(validators, Validator{Address: k.addr, Weight: 1})
	}
	vs, err := NewValidatorSet(1, validators)
	ensure.Nil(t, err)

	hash := crypto.DoubleHashH([]byte("block"))
	cert := &Certificate{Height: 5, Round: 1, BlockHash: hash}
	for _, k := range keys[:3] {
		cert.Votes = append(cert.Votes, k.vote(t, 5, 1, hash))
	}
	ensure.Nil(t, cert.Verify(vs))
	ensure.DeepEqual(t, cert.Weight(vs), uint64(3))

	// two of four is not more than two thirds
	short := &Certificate{Height: 5, Round: 1, BlockHash: hash, Votes: cert.Votes[:2]}
	ensure.DeepEqual(t, short.Verify(vs), ErrInsufficientQuorum)

	dup := &Certificate{Height: 5, Round: 1, BlockHash: hash,
		Votes: []*Vote{cert.Votes[0], cert.Votes[1], cert.Votes[1]}}
	ensure.DeepEqual(t, dup.Verify(vs), ErrDuplicateVoter)
	ensure.DeepEqual(t, dup.Weight(vs), uint64(2))

	stranger := newTestKey(t)
	unknown := &Certificate{Height: 5, Round: 1, BlockHash: hash,
		Votes: append([]*Vote{stranger.vote(t, 5, 1, hash)}, cert.Votes...)}
	ensure.DeepEqual(t, unknown.Verify(vs), ErrUnknownVoter)

	forged := *cert.Votes[2]
	forged.Voter = keys[3].addr
	bad := &Certificate{Height: 5, Round: 1, BlockHash: hash,
		Votes: []*Vote{cert.Votes[0], cert.Votes[1], &forged}}
	ensure.DeepEqual(t, bad.Verify(vs), ErrBadVoteSignature)

	mismatch := &Certificate{Height: 6, Round: 1, BlockHash: hash, Votes: cert.Votes}
	ensure.DeepEqual(t, mismatch.Verify(vs), ErrVoteMismatch)
}

func TestTransfers(t *testing.T) {
	a, b := newTestKey(t), newTestKey(t)
	transfers := []Transfer{{a.addr, 5}, {b.addr, 7}}
	data, err := EncodeTransfers(transfers)
	ensure.Nil(t, err)
	decoded, err := DecodeTransfers(data)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, decoded, transfers)

	total, ok := TotalAmount(decoded)
	ensure.True(t, ok)
	ensure.DeepEqual(t, total, uint64(12))

	_, ok = TotalAmount([]Transfer{{a.addr, ^uint64(0)}, {b.addr, 1}})
	ensure.False(t, ok)
}
