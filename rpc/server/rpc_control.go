// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"fmt"

	"github.com/BOXFoundation/ledgerd/rpc/rpcpb"
)

func registerControl(s *Server) {
	rpcpb.RegisterControlServer(s.server, &ctlserver{server: s})
}

func init() {
	RegisterService("control", registerControl)
}

type ctlserver struct {
	server GRPCServer
}

// SetDebugLevel implements SetDebugLevel
func (s *ctlserver) SetDebugLevel(ctx context.Context, in *rpcpb.DebugLevelRequest) (*rpcpb.BaseResponse, error) {
	logger.SetLogLevel(in.Level)
	if in.Level != logger.LogLevel() {
		var info = fmt.Sprintf("Wrong debug level: %s", in.Level)
		logger.Info(info)
		return &rpcpb.BaseResponse{Code: 1, Message: info}, nil
	}
	var info = fmt.Sprintf("Set debug level: %s", logger.LogLevel())
	logger.Infof(info)
	return &rpcpb.BaseResponse{Code: 0, Message: info}, nil
}

// GetNodeInfo reports the head, the peers and the state of sync and
// consensus.
func (s *ctlserver) GetNodeInfo(ctx context.Context, in *rpcpb.NodeInfoRequest) (*rpcpb.NodeInfoResponse, error) {
	height, _ := s.server.GetChain().Head()
	net := s.server.GetNet()
	resp := &rpcpb.NodeInfoResponse{
		Code:    0,
		Message: "ok",
		Id:      net.ID().Pretty(),
		Height:  height,
	}
	if r := s.server.GetReporter(); r != nil {
		resp.SyncStatus = r.SyncStatus()
		resp.ConsensusState, resp.Round, resp.Halted = r.ConsensusStatus()
	}
	for _, p := range net.Peers() {
		resp.Peers = append(resp.Peers, &rpcpb.PeerInfo{
			Id:      p.ID.Pretty(),
			Addr:    p.Addr,
			Height:  p.Height,
			State:   p.State.String(),
			Score:   p.Score,
			Inbound: p.Inbound,
		})
	}
	return resp, nil
}
