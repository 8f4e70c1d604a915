// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

// Config defines the configurations of chain
type Config struct {
	BlockCacheSize int `mapstructure:"block_cache_size"`
	StateCacheSize int `mapstructure:"state_cache_size"`
	MaxBlocksRange int `mapstructure:"max_blocks_range"`
}

// default values
const (
	DefaultBlockCacheSize = 512
	DefaultStateCacheSize = 8192
	DefaultMaxBlocksRange = 1024
)

// Fill sets defaults for zero values.
func (cfg *Config) Fill() {
	if cfg.BlockCacheSize <= 0 {
		cfg.BlockCacheSize = DefaultBlockCacheSize
	}
	if cfg.StateCacheSize <= 0 {
		cfg.StateCacheSize = DefaultStateCacheSize
	}
	if cfg.MaxBlocksRange <= 0 {
		cfg.MaxBlocksRange = DefaultMaxBlocksRange
	}
}

// GenesisValidator is a validator entry of the genesis section.
type GenesisValidator struct {
	Address string `mapstructure:"address"`
	Weight  uint64 `mapstructure:"weight"`
}

// GenesisBalance is an initial balance of the genesis section.
type GenesisBalance struct {
	Address string `mapstructure:"address"`
	Balance uint64 `mapstructure:"balance"`
}

// GenesisConfig describes block 0.
type GenesisConfig struct {
	Timestamp  int64              `mapstructure:"timestamp"`
	Validators []GenesisValidator `mapstructure:"validators"`
	Balances   []GenesisBalance   `mapstructure:"balances"`
}
