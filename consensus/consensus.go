// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
)

// Consensus define consensus interface
type Consensus interface {
	service.Server

	// StopMint suspends proposing and voting, e.g. while syncing.
	StopMint()
	// RecoverMint resumes participation from the current head.
	RecoverMint()
}

// ProposerSchedule decides who proposes a round. Implementations must be
// deterministic so that all validators agree.
type ProposerSchedule interface {
	Proposer(vs *types.ValidatorSet, height uint64, round uint32) types.Address
}
