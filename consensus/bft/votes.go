// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import (
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	peer "github.com/libp2p/go-libp2p-peer"
)

// Equivocation is evidence of a validator voting for two blocks in one
// round.
type Equivocation struct {
	First  *types.Vote
	Second *types.Vote
}

// ConflictEvidence is published on eventbus.TopicConsensusConflict when two
// certificates exist for one height. Committed is set when Chosen is
// already on chain and Rejected is only flagged.
type ConflictEvidence struct {
	Height    uint64
	Chosen    *types.Certificate
	Rejected  *types.Certificate
	Committed bool
}

// voteSet tracks the votes of one height and round. A validator counts
// once; its later votes for another block are evidence.
type voteSet struct {
	height  uint64
	round   uint32
	byVoter map[types.Address]*types.Vote
	byBlock map[crypto.HashType][]*types.Vote
	weight  map[crypto.HashType]uint64
}

func newVoteSet(height uint64, round uint32) *voteSet {
	return &voteSet{
		height:  height,
		round:   round,
		byVoter: make(map[types.Address]*types.Vote),
		byBlock: make(map[crypto.HashType][]*types.Vote),
		weight:  make(map[crypto.HashType]uint64),
	}
}

// add records v, which must be verified already. It reports whether v was
// new; on a conflicting vote it returns the vote counted earlier.
func (s *voteSet) add(v *types.Vote, vs *types.ValidatorSet) (bool, *types.Vote) {
	if prev, ok := s.byVoter[v.Voter]; ok {
		if prev.BlockHash == v.BlockHash {
			return false, nil
		}
		return false, prev
	}
	s.byVoter[v.Voter] = v
	s.byBlock[v.BlockHash] = append(s.byBlock[v.BlockHash], v)
	s.weight[v.BlockHash] += vs.WeightOf(v.Voter)
	return true, nil
}

// quorum returns the block that gathered more than two thirds of the
// weight. There is at most one since every validator counts once.
func (s *voteSet) quorum(vs *types.ValidatorSet) (crypto.HashType, bool) {
	for hash, weight := range s.weight {
		if vs.IsQuorum(weight) {
			return hash, true
		}
	}
	return crypto.HashType{}, false
}

func (s *voteSet) certificate(hash crypto.HashType) *types.Certificate {
	votes := make([]*types.Vote, len(s.byBlock[hash]))
	copy(votes, s.byBlock[hash])
	return &types.Certificate{
		Height:    s.height,
		Round:     s.round,
		BlockHash: hash,
		Votes:     votes,
	}
}

// preferCertificate picks between two certificates of one height: greater
// total weight first, then lower block hash.
func preferCertificate(a, b *types.Certificate, vs *types.ValidatorSet) *types.Certificate {
	wa, wb := a.Weight(vs), b.Weight(vs)
	switch {
	case wa > wb:
		return a
	case wb > wa:
		return b
	case b.BlockHash.Less(a.BlockHash):
		return b
	}
	return a
}

// roundState is what the engine knows about one round of the current
// height.
type roundState struct {
	proposal   *types.Block
	hash       crypto.HashType
	from       peer.ID
	votes      *voteSet
	validating bool
	voted      bool
}

func newRoundState(height uint64, round uint32) *roundState {
	return &roundState{votes: newVoteSet(height, round)}
}

func (rs *roundState) setProposal(block *types.Block, from peer.ID) {
	rs.proposal = block
	rs.hash = block.Hash()
	rs.from = from
}

// committedHeight keeps the votes of the last committed height, so that a
// late certificate for another block can be flagged.
type committedHeight struct {
	height  uint64
	hash    crypto.HashType
	cert    *types.Certificate
	rounds  map[uint32]*voteSet
	flagged bool
}
