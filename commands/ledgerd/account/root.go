// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package account

import (
	"fmt"
	"path/filepath"

	root "github.com/BOXFoundation/ledgerd/commands/ledgerd/root"
	"github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/wallet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "account [command]",
	Short: "Manage keystore accounts",
}

func init() {
	root.RootCmd.AddCommand(rootCmd)
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Create a new account in the workspace keystore",
			RunE:  newAccount,
		},
		&cobra.Command{
			Use:   "show",
			Short: "List the accounts of the workspace keystore",
			RunE:  showAccounts,
		},
	)
}

func keystoreDir() string {
	return filepath.Join(viper.GetString("workspace"), config.DefaultNodeKeys)
}

func newAccount(cmd *cobra.Command, args []string) error {
	wlt, err := wallet.NewWalletManager(keystoreDir())
	if err != nil {
		return err
	}
	passphrase, err := wallet.ReadPassphraseStdin()
	if err != nil {
		return err
	}
	addr, err := wlt.NewAccount(passphrase)
	if err != nil {
		return err
	}
	fmt.Printf("Created new account: %s\nKeystore: %s\n", addr,
		filepath.Join(keystoreDir(), addr.String()+".keystore"))
	return nil
}

func showAccounts(cmd *cobra.Command, args []string) error {
	wlt, err := wallet.NewWalletManager(keystoreDir())
	if err != nil {
		return err
	}
	for i, addr := range wlt.ListAccounts() {
		fmt.Printf("%d\t%s\n", i, addr)
	}
	return nil
}
