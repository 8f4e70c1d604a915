// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"errors"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/rpc/rpcpb"
	"google.golang.org/grpc"
)

var txStates = map[string]chain.TxState{
	chain.TxUnknown.String():   chain.TxUnknown,
	chain.TxPending.String():   chain.TxPending,
	chain.TxCommitted.String(): chain.TxCommitted,
}

var rejectReasons = map[string]core.RejectReason{
	core.Malformed.String():          core.Malformed,
	core.ProofInvalid.String():       core.ProofInvalid,
	core.StateConflict.String():      core.StateConflict,
	core.DuplicateOrExpired.String(): core.DuplicateOrExpired,
}

// GetHead returns the committed head of the node.
func GetHead(conn *grpc.ClientConn) (uint64, crypto.HashType, error) {
	c := rpcpb.NewQueryClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.Head(ctx, &rpcpb.HeadRequest{})
	if err != nil {
		return 0, crypto.HashType{}, err
	}
	hash, err := crypto.NewHashFromStr(r.Hash)
	if err != nil {
		return 0, crypto.HashType{}, err
	}
	return r.Height, *hash, nil
}

// GetBlock returns the committed block at height.
func GetBlock(conn *grpc.ClientConn, height uint64) (*types.Block, error) {
	return getBlock(conn, &rpcpb.GetBlockRequest{Height: height})
}

// GetBlockByHash returns the committed block with hash.
func GetBlockByHash(conn *grpc.ClientConn, hash crypto.HashType) (*types.Block, error) {
	return getBlock(conn, &rpcpb.GetBlockRequest{Hash: hash.String()})
}

func getBlock(conn *grpc.ClientConn, req *rpcpb.GetBlockRequest) (*types.Block, error) {
	c := rpcpb.NewQueryClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.GetBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	block := new(types.Block)
	if err := block.Unmarshal(r.Block); err != nil {
		return nil, err
	}
	return block, nil
}

// GetBlocks returns the committed blocks in [start, end]. The server may
// return fewer than asked.
func GetBlocks(ctx context.Context, conn *grpc.ClientConn, start, end uint64) ([]*types.Block, error) {
	c := rpcpb.NewQueryClient(conn)
	r, err := c.GetBlocks(ctx, &rpcpb.GetBlocksRequest{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	blocks := make([]*types.Block, 0, len(r.Blocks))
	for _, data := range r.Blocks {
		block := new(types.Block)
		if err := block.Unmarshal(data); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// GetTransactionStatus locates a transaction.
func GetTransactionStatus(conn *grpc.ClientConn, hash crypto.HashType) (*chain.TxStatus, error) {
	c := rpcpb.NewQueryClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.GetTransactionStatus(ctx, &rpcpb.GetTransactionStatusRequest{Hash: hash.String()})
	if err != nil {
		return nil, err
	}
	state, ok := txStates[r.State]
	if !ok {
		return nil, errors.New("unknown transaction state " + r.State)
	}
	return &chain.TxStatus{State: state, Height: r.Height, Index: r.Index}, nil
}

// GetMempoolSize returns the number of pending transactions.
func GetMempoolSize(conn *grpc.ClientConn) (int, error) {
	c := rpcpb.NewQueryClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.MempoolSize(ctx, &rpcpb.MempoolSizeRequest{})
	if err != nil {
		return 0, err
	}
	return int(r.Size), nil
}

// SubmitTransaction sends tx to the node mempool. A rejection comes back
// as a *core.RejectError.
func SubmitTransaction(conn *grpc.ClientConn, tx *types.Transaction) (crypto.HashType, error) {
	data, err := tx.Marshal()
	if err != nil {
		return crypto.HashType{}, err
	}
	c := rpcpb.NewQueryClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.SubmitTransaction(ctx, &rpcpb.SubmitTransactionRequest{Tx: data})
	if err != nil {
		return crypto.HashType{}, err
	}
	if r.Code != 0 {
		reason, ok := rejectReasons[r.Reason]
		if !ok {
			return crypto.HashType{}, errors.New(r.Message)
		}
		return crypto.HashType{}, core.NewValidationError(reason, "%s", r.Message)
	}
	return tx.Hash(), nil
}
