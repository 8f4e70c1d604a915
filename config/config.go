// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BOXFoundation/ledgerd/blocksync"
	"github.com/BOXFoundation/ledgerd/consensus/bft"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/core/validator"
	logtypes "github.com/BOXFoundation/ledgerd/log/types"
	"github.com/BOXFoundation/ledgerd/metrics"
	"github.com/BOXFoundation/ledgerd/p2p"
	rpc "github.com/BOXFoundation/ledgerd/rpc/server"
	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

////////////////////////////////////////////////////////////////
// build time variants

// Version number of the build
var Version string

// GitCommit id of source code
var GitCommit string

// GitBranch name of source code
var GitBranch string

// GoVersion used to build the binary
var GoVersion = runtime.Version()

////////////////////////////////////////////////////////////////

// default file names under the workspace
const (
	DefaultLogFile  = "ledgerd.log"
	DefaultPeerKey  = "peer.key"
	DefaultNodeKeys = "keystore"
)

// Config is a configuration data structure for the ledgerd server,
// which is read from config file or parsed from command line.
type Config struct {
	Workspace string              `mapstructure:"workspace"`
	Network   string              `mapstructure:"network"`
	Log       logtypes.Config     `mapstructure:"log"`
	P2p       p2p.Config          `mapstructure:"p2p"`
	RPC       rpc.Config          `mapstructure:"rpc"`
	Database  storage.Config      `mapstructure:"database"`
	Chain     chain.Config        `mapstructure:"chain"`
	Txpool    txpool.Config       `mapstructure:"txpool"`
	Validator validator.Config    `mapstructure:"validator"`
	Consensus bft.Config          `mapstructure:"consensus"`
	Sync      blocksync.Config    `mapstructure:"sync"`
	Metrics   metrics.Config      `mapstructure:"metrics"`
	Genesis   chain.GenesisConfig `mapstructure:"genesis"`
}

var format = `workspace: %s
network: %s
log: %v
p2p: %v
rpc: %v
database: %s`

func (c Config) String() string {
	return fmt.Sprintf(format, c.Workspace, c.Network, c.Log, c.P2p, c.RPC, c.Database.Path)
}

// GetLog return log config.
func (c Config) GetLog() logtypes.Config {
	return c.Log
}

// Load builds a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	return cfg, nil
}

// Prepare makes sure all configurations are correct, resolving paths under
// the workspace and filling defaults of every section.
func (c *Config) Prepare() error {
	ws, err := filepath.Abs(c.Workspace)
	if err != nil {
		return err
	}
	c.Workspace = ws // change to abs path
	if err := mkDirAll(c.Workspace); err != nil {
		return err
	}

	// check if the network is correct.
	if c.Network == "" {
		c.Network = "mainnet"
	}
	magic, ok := p2p.NetworkNameToMagic[c.Network]
	if !ok {
		return fmt.Errorf("incorrect network name %s", c.Network)
	}
	c.P2p.Magic = magic

	if err := c.prepareLog(); err != nil {
		return err
	}

	// database
	if c.Database.Name == "" {
		c.Database.Name = "rocksdb"
	}
	dbpath := filepath.Join(c.Workspace, "database", c.Network)
	if err := mkDirAll(dbpath); err != nil {
		return err
	}
	c.Database.Path = dbpath

	// p2p
	if c.P2p.KeyPath, err = c.resolve(c.P2p.KeyPath, DefaultPeerKey); err != nil {
		return err
	}
	// validator key is optional; without it the node only observes
	if c.Consensus.Keypath != "" {
		if c.Consensus.Keypath, err = c.resolve(c.Consensus.Keypath, ""); err != nil {
			return err
		}
	}

	c.P2p.Fill()
	c.RPC.Fill()
	c.Chain.Fill()
	c.Txpool.Fill()
	c.Validator.Fill()
	c.Consensus.Fill()
	c.Sync.Fill()
	return nil
}

// KeystoreDir is where account files are created.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.Workspace, DefaultNodeKeys)
}

// check log file configuration
func (c *Config) prepareLog() error {
	for i := range c.Log.Hooks {
		hook := &c.Log.Hooks[i]
		if hook.Name != "file" && hook.Name != "filewithformatter" { // only check file logs
			continue
		}
		if hook.Options == nil {
			hook.Options = make(map[string]interface{})
		}
		filename, ok := hook.Options["filename"]
		if !ok {
			logfile := filepath.Join(c.Workspace, "logs", c.Network, DefaultLogFile)
			if err := mkDirAll(filepath.Dir(logfile)); err != nil {
				return err
			}
			hook.Options["filename"] = logfile
			continue
		}
		strV, ok := filename.(string)
		if !ok {
			return fmt.Errorf("incorrect log filename %v", filename)
		}
		if filepath.IsAbs(strV) { // abs dir
			if err := mkDirAll(filepath.Dir(strV)); err != nil {
				return err
			}
			continue
		}
		if strings.Contains(strV, "/") { // incorrect filename
			return fmt.Errorf("incorrect log filename %s", strV)
		}
		if len(strV) == 0 {
			strV = DefaultLogFile
		}
		logfile := filepath.Join(c.Workspace, "logs", c.Network, strV)
		if err := mkDirAll(filepath.Dir(logfile)); err != nil {
			return err
		}
		hook.Options["filename"] = logfile
	}
	return nil
}

// resolve places a bare file name under the workspace. Absolute paths are
// kept as they are.
func (c *Config) resolve(path, fallback string) (string, error) {
	if filepath.IsAbs(path) {
		return path, mkDirAll(filepath.Dir(path))
	}
	if strings.Contains(path, "/") {
		return "", fmt.Errorf("incorrect key filename %s", path)
	}
	if len(path) == 0 {
		path = fallback
	}
	return filepath.Join(c.Workspace, path), nil
}

func mkDirAll(p string) error {
	return os.MkdirAll(p, 0700)
}
