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

// mempoolCmd represents the mempool command
var mempoolCmd = &cobra.Command{
	Use:   "mempool",
	Short: "Get the number of pending transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConn(func(conn *grpc.ClientConn) error {
			size, err := rpc.GetMempoolSize(conn)
			if err != nil {
				return err
			}
			fmt.Printf("pending: %d\n", size)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mempoolCmd)
}
