// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"context"

	"github.com/BOXFoundation/ledgerd/core/types"
)

// Prover checks transaction proofs and runs the built-in programs. It must
// be pure and deterministic.
type Prover interface {
	Verify(proof, publicInputs []byte) (bool, error)
	Execute(program string, inputs []byte) ([]byte, error)
}

// Account signs on behalf of one address.
type Account interface {
	// Sign returns a 65 bytes compact signature over a 32 bytes hash.
	Sign(payload []byte) ([]byte, error)
	Address() types.Address
}

// BulkSource serves committed blocks in [start, end] from outside the
// peer network.
type BulkSource interface {
	FetchRange(ctx context.Context, start, end uint64) ([]*types.Block, error)
}
