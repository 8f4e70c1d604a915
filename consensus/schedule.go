// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consensus

import (
	"encoding/binary"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
)

// schedule names accepted by NewSchedule
const (
	ScheduleRoundRobin    = "round_robin"
	ScheduleStakeWeighted = "stake_weighted"
)

// NewSchedule returns the schedule registered under name. An empty name
// selects round robin.
func NewSchedule(name string) (ProposerSchedule, error) {
	switch name {
	case "", ScheduleRoundRobin:
		return RoundRobin{}, nil
	case ScheduleStakeWeighted:
		return StakeWeighted{}, nil
	}
	return nil, ErrUnknownSchedule
}

// RoundRobin rotates through the validators in their configured order, one
// step per height and one per round.
type RoundRobin struct{}

var _ ProposerSchedule = RoundRobin{}

// Proposer implements ProposerSchedule.
func (RoundRobin) Proposer(vs *types.ValidatorSet, height uint64, round uint32) types.Address {
	validators := vs.Validators()
	idx := (height + uint64(round)) % uint64(len(validators))
	return validators[idx].Address
}

// StakeWeighted picks a validator with probability proportional to its
// weight, seeded by hash(height, round).
type StakeWeighted struct{}

var _ ProposerSchedule = StakeWeighted{}

// Proposer implements ProposerSchedule.
func (StakeWeighted) Proposer(vs *types.ValidatorSet, height uint64, round uint32) types.Address {
	var buf [12]byte
	binary.BigEndian.PutUint64(buf[:8], height)
	binary.BigEndian.PutUint32(buf[8:], round)
	seed := crypto.DoubleHashH(buf[:])
	target := binary.BigEndian.Uint64(seed[:8]) % vs.TotalWeight()

	validators := vs.Validators()
	for _, v := range validators {
		if target < v.Weight {
			return v.Address
		}
		target -= v.Weight
	}
	// unreachable while weights sum to the total
	return validators[len(validators)-1].Address
}
