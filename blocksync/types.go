// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import (
	"context"
	"sync"

	"github.com/BOXFoundation/ledgerd/core"
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/pkg/errors"
)

// SyncStatus is the catch-up state of the node.
type SyncStatus int32

// Sync states
const (
	Synced SyncStatus = iota
	Behind
	CatchingUp
)

var statusNames = [...]string{"Synced", "Behind", "CatchingUp"}

func (s SyncStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Unknown"
}

func newBlockResponse(start uint64, blocks []*types.Block) (*corepb.BlockResponse, error) {
	resp := &corepb.BlockResponse{
		Start:  start,
		Blocks: make([]*corepb.Block, 0, len(blocks)),
	}
	for _, b := range blocks {
		msg, err := b.ToProtoMessage()
		if err != nil {
			return nil, err
		}
		pb, ok := msg.(*corepb.Block)
		if !ok {
			return nil, types.ErrInvalidProtoMessage
		}
		resp.Blocks = append(resp.Blocks, pb)
	}
	return resp, nil
}

func blocksOf(resp *corepb.BlockResponse) ([]*types.Block, error) {
	blocks := make([]*types.Block, 0, len(resp.Blocks))
	for i, pb := range resp.Blocks {
		b := new(types.Block)
		if err := b.FromProtoMessage(pb); err != nil {
			return nil, errors.Wrapf(err, "block %d of response", i)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// MemorySource is a core.BulkSource over blocks held in memory.
type MemorySource struct {
	mtx      sync.RWMutex
	byHeight map[uint64]*types.Block
}

var _ core.BulkSource = (*MemorySource)(nil)

// NewMemorySource creates a source serving blocks.
func NewMemorySource(blocks ...*types.Block) *MemorySource {
	s := &MemorySource{byHeight: make(map[uint64]*types.Block)}
	s.Add(blocks...)
	return s
}

// Add makes blocks available.
func (s *MemorySource) Add(blocks ...*types.Block) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, b := range blocks {
		s.byHeight[b.Height()] = b
	}
}

// FetchRange returns the blocks in [start, end], stopping at the first
// missing height. It fails when start itself is missing.
func (s *MemorySource) FetchRange(ctx context.Context, start, end uint64) ([]*types.Block, error) {
	if end < start {
		return nil, ErrRangeUnavailable
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var blocks []*types.Block
	for h := start; h <= end; h++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok := s.byHeight[h]
		if !ok {
			break
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil, ErrRangeUnavailable
	}
	return blocks, nil
}
