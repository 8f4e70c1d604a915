// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/BOXFoundation/ledgerd/core/state"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/pkg/errors"
)

// GenesisValidatorSetVersion is the version of the validator set of block 0.
const GenesisValidatorSetVersion = 1

// NewGenesis builds block 0, its state and the initial validator set from
// cfg. Every node configured with the same section derives the same hash.
func NewGenesis(cfg *GenesisConfig) (*types.Block, *state.Overlay, *types.ValidatorSet, error) {
	if len(cfg.Validators) == 0 {
		return nil, nil, nil, ErrNoValidators
	}
	validators := make([]types.Validator, 0, len(cfg.Validators))
	for _, v := range cfg.Validators {
		addr, err := types.ParseAddress(v.Address)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(ErrInvalidGenesisAddr, "validator %s: %v", v.Address, err)
		}
		validators = append(validators, types.Validator{Address: addr, Weight: v.Weight})
	}
	vs, err := types.NewValidatorSet(GenesisValidatorSetVersion, validators)
	if err != nil {
		return nil, nil, nil, err
	}

	overlay := state.NewOverlay(state.MapView{})
	for _, b := range cfg.Balances {
		addr, err := types.ParseAddress(b.Address)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(ErrInvalidGenesisAddr, "balance %s: %v", b.Address, err)
		}
		acc, _ := overlay.GetAccount(addr)
		acc.Balance += b.Balance
		overlay.SetAccount(addr, acc)
	}

	block := &types.Block{
		Header: &types.BlockHeader{
			Height:              0,
			TimeStamp:           cfg.Timestamp,
			TxsRoot:             types.CalcTxsRoot(nil),
			StateRoot:           overlay.Root(crypto.ZeroHash),
			ValidatorSetVersion: vs.Version(),
		},
	}
	return block, overlay, vs, nil
}
