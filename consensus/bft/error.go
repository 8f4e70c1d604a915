// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import "errors"

// Define err message
var (
	ErrStaleHead   = errors.New("Head moved while building block")
	ErrNotProposer = errors.New("Proposal is not from the scheduled proposer")
	ErrBadProposal = errors.New("Invalid proposer signature")
	ErrUnknownVote = errors.New("Vote from unknown validator")
	ErrBadVote     = errors.New("Invalid vote signature")
)
