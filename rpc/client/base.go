// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"fmt"
	"time"

	"github.com/BOXFoundation/ledgerd/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

var logger = log.NewLogger("rpcclient") // logger for client package

const rpcTimeout = 10 * time.Second

// Dial connects to the rpc server at addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("fail to establish grpc connection to %s: %v", addr, err)
	}
	return conn, nil
}

// NewConnectionWithViper connects to the rpc server configured in v.
func NewConnectionWithViper(v *viper.Viper) (*grpc.ClientConn, error) {
	addr := fmt.Sprintf("%s:%d", v.GetString("rpc.address"), v.GetInt("rpc.port"))
	logger.Debugf("connect to rpc server %s", addr)
	return Dial(addr)
}
