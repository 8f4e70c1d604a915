// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import "errors"

// Error definitions
var (
	ErrBlockNotFound      = errors.New("block not found")
	ErrTxNotFound         = errors.New("transaction not found")
	ErrGenesisMismatch    = errors.New("stored genesis does not match the configured one")
	ErrNoValidators       = errors.New("genesis has no validators")
	ErrInvalidGenesisAddr = errors.New("invalid address in genesis")
	ErrInvalidRange       = errors.New("invalid block range")
	ErrCorruptedHead      = errors.New("head marker references a missing block")
)
