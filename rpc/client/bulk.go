// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"context"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/types"
	"google.golang.org/grpc"
)

// BulkSource fetches committed blocks from a trusted archive node.
type BulkSource struct {
	conn *grpc.ClientConn
}

var _ core.BulkSource = (*BulkSource)(nil)

// NewBulkSource connects to the archive node at addr.
func NewBulkSource(addr string) (*BulkSource, error) {
	conn, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	logger.Infof("Bulk source at %s", addr)
	return &BulkSource{conn: conn}, nil
}

// FetchRange implements core.BulkSource. It pages through GetBlocks until
// end or until the archive has nothing more.
func (s *BulkSource) FetchRange(ctx context.Context, start, end uint64) ([]*types.Block, error) {
	var blocks []*types.Block
	for next := start; next <= end; {
		page, err := GetBlocks(ctx, s.conn, next, end)
		if err != nil {
			if len(blocks) > 0 {
				logger.Debugf("Bulk fetch stopped at %d: %v", next, err)
				return blocks, nil
			}
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		blocks = append(blocks, page...)
		next += uint64(len(page))
	}
	return blocks, nil
}

// Close closes the connection.
func (s *BulkSource) Close() error {
	return s.conn.Close()
}
