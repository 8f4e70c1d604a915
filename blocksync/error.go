// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import "errors"

// Error definitions
var (
	ErrNoSource         = errors.New("no peer or bulk source can serve the range")
	ErrRangeUnavailable = errors.New("range not available from source")
	ErrEmptyResponse    = errors.New("source returned no blocks")
	ErrUnexpectedStart  = errors.New("blocks do not start at the requested height")

	errSyncTimeout = errors.New("timeout waiting for block response")
	errClosing     = errors.New("sync manager is closing")
)
