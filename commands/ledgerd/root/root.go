// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package root

import (
	"fmt"
	"net"
	"os"
	"path"
	"strings"

	"github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/log"
	rpc "github.com/BOXFoundation/ledgerd/rpc/server"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// root command
var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerd, a replicated ledger node with BFT finality",
	Long: `ledgerd runs a permissioned ledger: validators agree on every block
with a weighted BFT vote, and lagging nodes catch up from peers.`,
	Example: `
1. start a node
  ./ledgerd start --config ledgerd.yaml
2. query the node
  ./ledgerd ctl head
  ./ledgerd ctl block 42
3. manage keys
  ./ledgerd account new
	`,
	Version: fmt.Sprintf("%s %s(%s) %s\n", config.Version, config.GitCommit, config.GitBranch, config.GoVersion),
}

var logger = log.NewLogger("cmd")

// init sets flags appropriately.
func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is nil)")

	RootCmd.PersistentFlags().StringP("network", "n", "mainnet", "network name [mainnet|testnet]")
	viper.BindPFlag("network", RootCmd.PersistentFlags().Lookup("network"))

	RootCmd.PersistentFlags().String("workspace", "", "work directory for ledgerd (default ~/.ledgerd)")
	viper.BindPFlag("workspace", RootCmd.PersistentFlags().Lookup("workspace"))

	RootCmd.PersistentFlags().String("log-level", "info", "log level [debug|info|warn|error|fatal]")
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))

	RootCmd.PersistentFlags().IP("rpc-addr", net.ParseIP(rpc.DefaultAddress), "gRPC address.")
	viper.BindPFlag("rpc.address", RootCmd.PersistentFlags().Lookup("rpc-addr"))

	RootCmd.PersistentFlags().Uint("rpc-port", rpc.DefaultPort, "gRPC port.")
	viper.BindPFlag("rpc.port", RootCmd.PersistentFlags().Lookup("rpc-port"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	logger.SetLogLevel(viper.GetString("log.level"))

	// Find home directory.
	home, err := homedir.Dir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory or current directory with name ".ledgerd" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".ledgerd")
	}

	viper.SetEnvPrefix("ledgerd")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("workspace", path.Join(home, ".ledgerd"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Printf("Failed to read config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}
