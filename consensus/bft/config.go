// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import "time"

// Config defines the configurations of the bft engine
type Config struct {
	Schedule       string        `mapstructure:"schedule"`
	TimeoutPropose time.Duration `mapstructure:"timeout_propose"`
	TimeoutDelta   time.Duration `mapstructure:"timeout_delta"`
	BlockInterval  time.Duration `mapstructure:"block_interval"`
	MaxBlockTxs    int           `mapstructure:"max_block_txs"`
	MaxBlockBytes  int           `mapstructure:"max_block_bytes"`
	Keypath        string        `mapstructure:"keypath"`
	Passphrase     string        `mapstructure:"passphrase"`
}

// default values
const (
	DefaultTimeoutPropose = 3 * time.Second
	DefaultTimeoutDelta   = time.Second
	DefaultBlockInterval  = time.Second
)

// Fill sets defaults for zero values. The block interval is kept below the
// round 0 timeout.
func (cfg *Config) Fill() {
	if cfg.TimeoutPropose <= 0 {
		cfg.TimeoutPropose = DefaultTimeoutPropose
	}
	if cfg.TimeoutDelta <= 0 {
		cfg.TimeoutDelta = DefaultTimeoutDelta
	}
	if cfg.BlockInterval <= 0 {
		cfg.BlockInterval = DefaultBlockInterval
	}
	if cfg.BlockInterval >= cfg.TimeoutPropose {
		cfg.BlockInterval = cfg.TimeoutPropose / 2
	}
}

func (cfg *Config) roundTimeout(round uint32) time.Duration {
	return cfg.TimeoutPropose + time.Duration(round)*cfg.TimeoutDelta
}
