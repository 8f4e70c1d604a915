// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"errors"

	"github.com/BOXFoundation/ledgerd/rpc/rpcpb"
	"google.golang.org/grpc"
)

// SetDebugLevel calls the DebugLevel gRPC methods.
func SetDebugLevel(conn *grpc.ClientConn, level string) (string, error) {
	c := rpcpb.NewControlClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r, err := c.SetDebugLevel(ctx, &rpcpb.DebugLevelRequest{Level: level})
	if err != nil {
		return "", err
	}
	if r.Code != 0 {
		return "", errors.New(r.Message)
	}
	return r.Message, nil
}

// GetNodeInfo returns the state of the node services.
func GetNodeInfo(conn *grpc.ClientConn) (*rpcpb.NodeInfoResponse, error) {
	c := rpcpb.NewControlClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return c.GetNodeInfo(ctx, &rpcpb.NodeInfoRequest{})
}
