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

// headCmd represents the head command
var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Get the committed head of the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConn(func(conn *grpc.ClientConn) error {
			height, hash, err := rpc.GetHead(conn)
			if err != nil {
				return err
			}
			fmt.Printf("height: %d\nhash: %s\n", height, hash)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(headCmd)
}
