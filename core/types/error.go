// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "errors"

// error
var (
	ErrInvalidAddressLength = errors.New("invalid address length")
	ErrInvalidAddressPrefix = errors.New("invalid address prefix")
	ErrEmptyProtoMessage    = errors.New("empty proto message")
	ErrInvalidProtoMessage  = errors.New("invalid proto message")
	ErrInvalidHashLength    = errors.New("invalid hash length")
	ErrVoteMismatch         = errors.New("vote does not match certificate")
	ErrUnknownVoter         = errors.New("voter is not in the validator set")
	ErrDuplicateVoter       = errors.New("duplicate voter in certificate")
	ErrBadVoteSignature     = errors.New("bad vote signature")
	ErrInsufficientQuorum   = errors.New("certificate weight does not exceed two thirds")
	ErrValidatorSetVersion  = errors.New("validator set version mismatch")
	ErrEmptyValidatorSet    = errors.New("empty validator set")
	ErrDuplicateValidator   = errors.New("duplicate validator")
	ErrZeroWeightValidator  = errors.New("validator weight must be positive")
	ErrWeightOverflow       = errors.New("total validator weight overflows")
)
