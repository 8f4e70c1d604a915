// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	"math"

	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
)

// Validator is a weighted consensus participant.
type Validator struct {
	Address Address
	Weight  uint64
}

// ValidatorSet is an immutable versioned snapshot. Callers must not modify
// the slice returned by Validators.
type ValidatorSet struct {
	version    uint64
	validators []Validator
	index      map[Address]int
	total      uint64
}

var _ conv.Convertible = (*ValidatorSet)(nil)

// maxTotalWeight keeps weight*3 and total*2 in IsQuorum within uint64.
const maxTotalWeight = math.MaxUint64 / 3

// NewValidatorSet builds a snapshot, rejecting duplicates, zero weights and
// totals above maxTotalWeight.
func NewValidatorSet(version uint64, validators []Validator) (*ValidatorSet, error) {
	if len(validators) == 0 {
		return nil, ErrEmptyValidatorSet
	}
	vs := &ValidatorSet{
		version:    version,
		validators: make([]Validator, len(validators)),
		index:      make(map[Address]int, len(validators)),
	}
	copy(vs.validators, validators)
	for i, v := range vs.validators {
		if v.Weight == 0 {
			return nil, ErrZeroWeightValidator
		}
		if _, ok := vs.index[v.Address]; ok {
			return nil, ErrDuplicateValidator
		}
		if v.Weight > maxTotalWeight-vs.total {
			return nil, ErrWeightOverflow
		}
		vs.index[v.Address] = i
		vs.total += v.Weight
	}
	return vs, nil
}

// Version returns the snapshot version.
func (vs *ValidatorSet) Version() uint64 { return vs.version }

// Validators returns the members in their configured order.
func (vs *ValidatorSet) Validators() []Validator { return vs.validators }

// Size returns the number of validators.
func (vs *ValidatorSet) Size() int { return len(vs.validators) }

// TotalWeight returns the sum of all weights.
func (vs *ValidatorSet) TotalWeight() uint64 { return vs.total }

// Contains reports whether addr is a member.
func (vs *ValidatorSet) Contains(addr Address) bool {
	_, ok := vs.index[addr]
	return ok
}

// WeightOf returns the weight of addr, 0 if it is not a member.
func (vs *ValidatorSet) WeightOf(addr Address) uint64 {
	if i, ok := vs.index[addr]; ok {
		return vs.validators[i].Weight
	}
	return 0
}

// IsQuorum reports whether weight is strictly more than two thirds of the
// total weight.
func (vs *ValidatorSet) IsQuorum(weight uint64) bool {
	return weight*3 > vs.total*2
}

// ToProtoMessage converts validator set to proto message.
func (vs *ValidatorSet) ToProtoMessage() (proto.Message, error) {
	msg := &corepb.ValidatorSet{Version: vs.version}
	for _, v := range vs.validators {
		msg.Validators = append(msg.Validators, &corepb.Validator{
			Address: v.Address.Bytes(),
			Weight:  v.Weight,
		})
	}
	return msg, nil
}

// FromProtoMessage converts proto message to validator set.
func (vs *ValidatorSet) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.ValidatorSet)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	validators := make([]Validator, 0, len(msg.Validators))
	for _, v := range msg.Validators {
		addr, err := NewAddress(v.Address)
		if err != nil {
			return err
		}
		validators = append(validators, Validator{Address: addr, Weight: v.Weight})
	}
	parsed, err := NewValidatorSet(msg.Version, validators)
	if err != nil {
		return err
	}
	*vs = *parsed
	return nil
}
