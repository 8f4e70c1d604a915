// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/crypto"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
)

// Vote is a signed endorsement of one block hash at one height and round.
type Vote struct {
	Height    uint64
	Round     uint32
	BlockHash crypto.HashType
	Voter     Address
	Signature []byte
}

var _ conv.Convertible = (*Vote)(nil)
var _ conv.Serializable = (*Vote)(nil)

// SigningHash is the hash the voter signs.
func (v *Vote) SigningHash() crypto.HashType {
	unsigned := *v
	unsigned.Signature = nil
	data, _ := conv.MarshalConvertible(&unsigned)
	return crypto.DoubleHashH(data)
}

// VerifySignature reports whether Signature was made by Voter.
func (v *Vote) VerifySignature() bool {
	return crypto.VerifyCompact(v.Signature, v.SigningHash(), v.Voter[:])
}

// ToProtoMessage converts vote to proto message.
func (v *Vote) ToProtoMessage() (proto.Message, error) {
	return &corepb.Vote{
		Height:    v.Height,
		Round:     v.Round,
		BlockHash: v.BlockHash.Bytes(),
		Voter:     v.Voter.Bytes(),
		Signature: v.Signature,
	}, nil
}

// FromProtoMessage converts proto message to vote.
func (v *Vote) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.Vote)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	hash, err := hashFromBytes(msg.BlockHash)
	if err != nil {
		return err
	}
	voter, err := NewAddress(msg.Voter)
	if err != nil {
		return err
	}
	v.Height = msg.Height
	v.Round = msg.Round
	v.BlockHash = hash
	v.Voter = voter
	v.Signature = msg.Signature
	return nil
}

// Marshal method marshal vote object to binary
func (v *Vote) Marshal() ([]byte, error) {
	return conv.MarshalConvertible(v)
}

// Unmarshal method unmarshal binary data to vote object
func (v *Vote) Unmarshal(data []byte) error {
	return conv.UnmarshalConvertible(data, new(corepb.Vote), v)
}

// Certificate proves that a quorum of one validator set snapshot voted
// for BlockHash at Height/Round.
type Certificate struct {
	Height    uint64
	Round     uint32
	BlockHash crypto.HashType
	Votes     []*Vote
}

var _ conv.Convertible = (*Certificate)(nil)

// Weight sums the weight of distinct known voters, ignoring votes that do
// not match the certificate.
func (c *Certificate) Weight(vs *ValidatorSet) uint64 {
	seen := make(map[Address]struct{}, len(c.Votes))
	var weight uint64
	for _, v := range c.Votes {
		if v.Height != c.Height || v.Round != c.Round || v.BlockHash != c.BlockHash {
			continue
		}
		if _, ok := seen[v.Voter]; ok {
			continue
		}
		seen[v.Voter] = struct{}{}
		weight += vs.WeightOf(v.Voter)
	}
	return weight
}

// Verify checks every vote against vs and the quorum threshold.
func (c *Certificate) Verify(vs *ValidatorSet) error {
	seen := make(map[Address]struct{}, len(c.Votes))
	var weight uint64
	for _, v := range c.Votes {
		if v.Height != c.Height || v.Round != c.Round || v.BlockHash != c.BlockHash {
			return ErrVoteMismatch
		}
		if !vs.Contains(v.Voter) {
			return ErrUnknownVoter
		}
		if _, ok := seen[v.Voter]; ok {
			return ErrDuplicateVoter
		}
		if !v.VerifySignature() {
			return ErrBadVoteSignature
		}
		seen[v.Voter] = struct{}{}
		weight += vs.WeightOf(v.Voter)
	}
	if !vs.IsQuorum(weight) {
		return ErrInsufficientQuorum
	}
	return nil
}

// ToProtoMessage converts certificate to proto message.
func (c *Certificate) ToProtoMessage() (proto.Message, error) {
	msg := &corepb.Certificate{
		Height:    c.Height,
		Round:     c.Round,
		BlockHash: c.BlockHash.Bytes(),
	}
	for _, v := range c.Votes {
		vote, _ := v.ToProtoMessage()
		msg.Votes = append(msg.Votes, vote.(*corepb.Vote))
	}
	return msg, nil
}

// FromProtoMessage converts proto message to certificate.
func (c *Certificate) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.Certificate)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	hash, err := hashFromBytes(msg.BlockHash)
	if err != nil {
		return err
	}
	votes := make([]*Vote, 0, len(msg.Votes))
	for _, m := range msg.Votes {
		v := new(Vote)
		if err := v.FromProtoMessage(m); err != nil {
			return err
		}
		votes = append(votes, v)
	}
	c.Height = msg.Height
	c.Round = msg.Round
	c.BlockHash = hash
	c.Votes = votes
	return nil
}
