// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctl

import (
	"errors"
	"fmt"

	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/crypto"
	rpc "github.com/BOXFoundation/ledgerd/rpc/client"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// txCmd represents the tx command
var txCmd = &cobra.Command{
	Use:   "tx [hash]",
	Short: "Get the status of a transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("parameter transaction hash required")
		}
		hash, err := crypto.NewHashFromStr(args[0])
		if err != nil {
			return err
		}
		return withConn(func(conn *grpc.ClientConn) error {
			status, err := rpc.GetTransactionStatus(conn, *hash)
			if err != nil {
				return err
			}
			if status.State == chain.TxCommitted {
				fmt.Printf("%s at height %d index %d\n", status.State, status.Height, status.Index)
			} else {
				fmt.Println(status.State)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
}
