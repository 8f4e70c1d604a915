// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package start

import (
	"net"

	root "github.com/BOXFoundation/ledgerd/commands/ledgerd/root"
	"github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/ledgerd"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// startCmd represents the start command, to start a node.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a ledgerd node.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		node := ledgerd.NewServer(cfg)
		if err := node.Prepare(); err != nil {
			return err
		}
		return node.Run()
	},
}

func init() {
	root.RootCmd.AddCommand(startCmd)

	startCmd.Flags().StringSlice("seeds", []string{}, "multiaddrs of seed peers, seperated by comma.")
	viper.BindPFlag("p2p.seeds", startCmd.Flags().Lookup("seeds"))

	startCmd.Flags().IP("listen-addr", net.IPv4zero, "local p2p listen address.")
	viper.BindPFlag("p2p.address", startCmd.Flags().Lookup("listen-addr"))

	startCmd.Flags().Uint("listen-port", p2p.DefaultPort, "local p2p listen port.")
	viper.BindPFlag("p2p.port", startCmd.Flags().Lookup("listen-port"))

	startCmd.Flags().Bool("rpc", true, "start rpc server.")
	viper.BindPFlag("rpc.enabled", startCmd.Flags().Lookup("rpc"))

	startCmd.Flags().String("database", "rocksdb", "database name [rocksdb|memdb]")
	viper.BindPFlag("database.name", startCmd.Flags().Lookup("database"))

	startCmd.Flags().String("keypath", "", "validator keystore; observe only when empty.")
	viper.BindPFlag("consensus.keypath", startCmd.Flags().Lookup("keypath"))

	startCmd.Flags().String("bulk-source", "", "rpc address of an archive node to sync from.")
	viper.BindPFlag("sync.bulk_source", startCmd.Flags().Lookup("bulk-source"))

	viper.SetDefault("p2p.key_path", config.DefaultPeerKey)
}
