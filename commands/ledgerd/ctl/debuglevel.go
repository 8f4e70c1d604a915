// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctl

import (
	"fmt"

	rpc "github.com/BOXFoundation/ledgerd/rpc/client"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// debuglevelCmd represents the debuglevel command
var debuglevelCmd = &cobra.Command{
	Use:   "debuglevel [debug|info|warning|error|fatal]",
	Short: "Set the debug level of ledgerd",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if len(args) > 0 {
			level = args[0]
		}
		return withConn(func(conn *grpc.ClientConn) error {
			msg, err := rpc.SetDebugLevel(conn, level)
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(debuglevelCmd)
}
