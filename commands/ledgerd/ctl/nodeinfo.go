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

// nodeinfoCmd represents the nodeinfo command
var nodeinfoCmd = &cobra.Command{
	Use:   "nodeinfo",
	Short: "Show the state of the node services and its peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConn(func(conn *grpc.ClientConn) error {
			info, err := rpc.GetNodeInfo(conn)
			if err != nil {
				return err
			}
			fmt.Printf("id: %s\nheight: %d\nsync: %s\nconsensus: %s round %d halted %t\n",
				info.Id, info.Height, info.SyncStatus, info.ConsensusState, info.Round, info.Halted)
			for _, p := range info.Peers {
				direction := "outbound"
				if p.Inbound {
					direction = "inbound"
				}
				fmt.Printf("  %s %s height %d %s score %d %s\n",
					p.Id, p.Addr, p.Height, p.State, p.Score, direction)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(nodeinfoCmd)
}
