// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctl

import (
	root "github.com/BOXFoundation/ledgerd/commands/ledgerd/root"
	rpc "github.com/BOXFoundation/ledgerd/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctl [command]",
	Short: "Client to interact with ledgerd",
}

func init() {
	root.RootCmd.AddCommand(rootCmd)
}

// withConn dials the configured node for the duration of fn.
func withConn(fn func(conn *grpc.ClientConn) error) error {
	conn, err := rpc.NewConnectionWithViper(viper.GetViper())
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
