// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/rpc/rpcpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func registerQuery(s *Server) {
	rpcpb.RegisterQueryServer(s.server, &queryServer{server: s})
}

func init() {
	RegisterService("query", registerQuery)
}

type queryServer struct {
	server GRPCServer
}

func (s *queryServer) Head(ctx context.Context, req *rpcpb.HeadRequest) (*rpcpb.HeadResponse, error) {
	height, hash := s.server.GetChain().Head()
	return &rpcpb.HeadResponse{Code: 0, Message: "ok", Height: height, Hash: hash.String()}, nil
}

func (s *queryServer) GetBlock(ctx context.Context, req *rpcpb.GetBlockRequest) (*rpcpb.GetBlockResponse, error) {
	var block *types.Block
	var err error
	if req.Hash != "" {
		hash, perr := crypto.NewHashFromStr(req.Hash)
		if perr != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid hash %q: %v", req.Hash, perr)
		}
		block, err = s.server.GetChain().GetBlockByHash(*hash)
	} else {
		block, err = s.server.GetChain().GetBlockByHeight(req.Height)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	data, err := block.Marshal()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &rpcpb.GetBlockResponse{Code: 0, Message: "ok", Block: data}, nil
}

func (s *queryServer) GetBlocks(ctx context.Context, req *rpcpb.GetBlocksRequest) (*rpcpb.GetBlocksResponse, error) {
	blocks, err := s.server.GetChain().GetBlocks(req.Start, req.End)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &rpcpb.GetBlocksResponse{Code: 0, Message: "ok", Blocks: make([][]byte, 0, len(blocks))}
	for _, b := range blocks {
		data, err := b.Marshal()
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		resp.Blocks = append(resp.Blocks, data)
	}
	logger.Debugf("GetBlocks [%d, %d] returns %d blocks", req.Start, req.End, len(blocks))
	return resp, nil
}

func (s *queryServer) GetTransactionStatus(ctx context.Context,
	req *rpcpb.GetTransactionStatusRequest) (*rpcpb.GetTransactionStatusResponse, error) {

	hash, err := crypto.NewHashFromStr(req.Hash)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid hash %q: %v", req.Hash, err)
	}
	st, err := s.server.GetChain().GetTransactionStatus(*hash)
	if err != nil {
		return nil, toStatus(err)
	}
	if st.State == chain.TxUnknown && s.server.GetTxPool().Has(*hash) {
		st.State = chain.TxPending
	}
	return &rpcpb.GetTransactionStatusResponse{
		Code:    0,
		Message: "ok",
		State:   st.State.String(),
		Height:  st.Height,
		Index:   st.Index,
	}, nil
}

func (s *queryServer) MempoolSize(ctx context.Context, req *rpcpb.MempoolSizeRequest) (*rpcpb.MempoolSizeResponse, error) {
	return &rpcpb.MempoolSizeResponse{Code: 0, Message: "ok", Size: uint32(s.server.GetTxPool().Size())}, nil
}

// SubmitTransaction admits a transaction into the local mempool. A
// rejection is a normal response carrying the reason.
func (s *queryServer) SubmitTransaction(ctx context.Context,
	req *rpcpb.SubmitTransactionRequest) (*rpcpb.SubmitTransactionResponse, error) {

	tx := new(types.Transaction)
	if err := tx.Unmarshal(req.Tx); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid transaction: %v", err)
	}
	hash := tx.Hash()
	err := s.server.GetTxPool().Submit(ctx, tx)
	if reason, ok := core.RejectReasonOf(err); ok {
		logger.Debugf("Rejected submitted tx %v: %v", hash, err)
		return &rpcpb.SubmitTransactionResponse{
			Code:    1,
			Message: err.Error(),
			Hash:    hash.String(),
			Reason:  reason.String(),
		}, nil
	}
	if err != nil {
		// admitted but not relayed
		logger.Warnf("Failed to broadcast tx %v: %v", hash, err)
	}
	return &rpcpb.SubmitTransactionResponse{Code: 0, Message: "ok", Hash: hash.String()}, nil
}

func toStatus(err error) error {
	switch err {
	case chain.ErrBlockNotFound, chain.ErrTxNotFound:
		return status.Error(codes.NotFound, err.Error())
	case chain.ErrInvalidRange:
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if core.IsStorage(err) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
