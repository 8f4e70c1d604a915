// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

// Config is the validator configuration
type Config struct {
	Workers      int `mapstructure:"workers"`
	CacheSize    int `mapstructure:"cache_size"`
	MaxTxSize    int `mapstructure:"max_tx_size"`
	MaxBlockSize int `mapstructure:"max_block_size"`
	MaxBlockTxs  int `mapstructure:"max_block_txs"`
}

// default values
const (
	DefaultWorkers      = 4
	DefaultCacheSize    = 65536
	DefaultMaxTxSize    = 64 * 1024
	DefaultMaxBlockSize = 4 * 1024 * 1024
	DefaultMaxBlockTxs  = 4096
)

// Fill sets defaults for zero values.
func (cfg *Config) Fill() {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.MaxTxSize <= 0 {
		cfg.MaxTxSize = DefaultMaxTxSize
	}
	if cfg.MaxBlockSize <= 0 {
		cfg.MaxBlockSize = DefaultMaxBlockSize
	}
	if cfg.MaxBlockTxs <= 0 {
		cfg.MaxBlockTxs = DefaultMaxBlockTxs
	}
}
