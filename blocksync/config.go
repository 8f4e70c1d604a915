// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import "time"

// Config is the sync manager configuration.
type Config struct {
	GapThreshold     uint64        `mapstructure:"gap_threshold"`
	ChunkSize        uint64        `mapstructure:"chunk_size"`
	BulkAfter        int           `mapstructure:"bulk_after"`
	StallTimeout     time.Duration `mapstructure:"stall_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	AnnounceInterval time.Duration `mapstructure:"announce_interval"`
	// BulkSource is the rpc address of a trusted archive node.
	BulkSource string `mapstructure:"bulk_source"`
}

// Default values
const (
	DefaultGapThreshold     = 2
	DefaultChunkSize        = 64
	DefaultBulkAfter        = 3
	DefaultStallTimeout     = 10 * time.Second
	DefaultMaxRetries       = 5
	DefaultPollInterval     = 2 * time.Second
	DefaultAnnounceInterval = 10 * time.Second
)

// Fill sets the defaults of unset fields.
func (cfg *Config) Fill() {
	if cfg.GapThreshold == 0 {
		cfg.GapThreshold = DefaultGapThreshold
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.BulkAfter <= 0 {
		cfg.BulkAfter = DefaultBulkAfter
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = DefaultStallTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.AnnounceInterval <= 0 {
		cfg.AnnounceInterval = DefaultAnnounceInterval
	}
}
