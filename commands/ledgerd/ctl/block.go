// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctl

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	rpc "github.com/BOXFoundation/ledgerd/rpc/client"
	"github.com/BOXFoundation/ledgerd/util"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var blockTo uint64

// blockCmd represents the block command
var blockCmd = &cobra.Command{
	Use:   "block [height|hash]",
	Short: "Get committed blocks by height or hash",
	Long: `Get the committed block at a height or with a hash. With --to, get
every block from height to --to, both included.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("parameter block height or hash required")
		}
		return withConn(func(conn *grpc.ClientConn) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				hash, err := crypto.NewHashFromStr(args[0])
				if err != nil {
					return fmt.Errorf("%s is neither a height nor a hash", args[0])
				}
				block, err := rpc.GetBlockByHash(conn, *hash)
				if err != nil {
					return err
				}
				printBlock(block)
				return nil
			}
			if blockTo <= height {
				block, err := rpc.GetBlock(conn, height)
				if err != nil {
					return err
				}
				printBlock(block)
				return nil
			}
			blocks, err := rpc.GetBlocks(context.Background(), conn, height, blockTo)
			if err != nil {
				return err
			}
			for _, block := range blocks {
				printBlock(block)
			}
			return nil
		})
	},
}

func printBlock(block *types.Block) {
	fmt.Printf("Block %d %s\n%s\n", block.Height(), block.Hash(), util.PrettyPrint(block.Header))
}

func init() {
	rootCmd.AddCommand(blockCmd)
	blockCmd.Flags().Uint64Var(&blockTo, "to", 0, "last height of a range")
}
