// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctl

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/types"
	rpc "github.com/BOXFoundation/ledgerd/rpc/client"
	"github.com/BOXFoundation/ledgerd/wallet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

var submitFlags struct {
	raw    string
	from   string
	to     string
	amount uint64
	fee    uint64
	nonce  uint64
	ttl    time.Duration
}

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a transaction to the node mempool",
	Long: `Submit a hex encoded transaction with --raw, or build a transfer
signed by a workspace account with --from, --to and --amount.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := buildTransaction()
		if err != nil {
			return err
		}
		return withConn(func(conn *grpc.ClientConn) error {
			hash, err := rpc.SubmitTransaction(conn, tx)
			if err != nil {
				return err
			}
			fmt.Printf("Transaction accepted: %s\n", hash)
			return nil
		})
	},
}

func buildTransaction() (*types.Transaction, error) {
	f := submitFlags
	if f.raw != "" {
		data, err := hex.DecodeString(f.raw)
		if err != nil {
			return nil, err
		}
		tx := new(types.Transaction)
		return tx, tx.Unmarshal(data)
	}
	if f.from == "" || f.to == "" || f.amount == 0 {
		return nil, errors.New("--raw, or --from, --to and --amount required")
	}
	from, err := types.ParseAddress(f.from)
	if err != nil {
		return nil, err
	}
	to, err := types.ParseAddress(f.to)
	if err != nil {
		return nil, err
	}
	inputs, err := types.EncodeTransfers([]types.Transfer{{To: to, Amount: f.amount}})
	if err != nil {
		return nil, err
	}
	tx := &types.Transaction{
		Sender:  from,
		Program: prover.ProgramTransfer,
		Inputs:  inputs,
		Fee:     f.fee,
		Nonce:   f.nonce,
	}
	if f.ttl > 0 {
		tx.Expiry = time.Now().Add(f.ttl).Unix()
	}

	wlt, err := wallet.NewWalletManager(filepath.Join(viper.GetString("workspace"), config.DefaultNodeKeys))
	if err != nil {
		return nil, err
	}
	passphrase, err := wallet.ReadPassphraseStdin()
	if err != nil {
		return nil, err
	}
	acc, err := wlt.Unlock(from, passphrase)
	if err != nil {
		return nil, err
	}
	defer acc.Lock()
	hash := tx.SigningHash()
	if tx.Proof, err = acc.Sign(hash[:]); err != nil {
		return nil, err
	}
	return tx, nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitFlags.raw, "raw", "", "hex encoded transaction")
	submitCmd.Flags().StringVar(&submitFlags.from, "from", "", "sender account address")
	submitCmd.Flags().StringVar(&submitFlags.to, "to", "", "receiver address")
	submitCmd.Flags().Uint64Var(&submitFlags.amount, "amount", 0, "amount to transfer")
	submitCmd.Flags().Uint64Var(&submitFlags.fee, "fee", 0, "transaction fee")
	submitCmd.Flags().Uint64Var(&submitFlags.nonce, "nonce", 0, "sender nonce")
	submitCmd.Flags().DurationVar(&submitFlags.ttl, "ttl", 0, "expire the transaction after ttl, never when 0")
}
