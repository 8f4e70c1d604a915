// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package txpool

import "time"

// Config for the transaction pool.
type Config struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanInterval   time.Duration `mapstructure:"clean_interval"`
	RecentCacheSize int           `mapstructure:"recent_cache_size"`
}

// default values
const (
	DefaultTTL             = 3600 * time.Second
	DefaultCleanInterval   = time.Minute
	DefaultRecentCacheSize = 65536
)

// Fill sets defaults for zero values.
func (cfg *Config) Fill() {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanInterval <= 0 {
		cfg.CleanInterval = DefaultCleanInterval
	}
	if cfg.RecentCacheSize <= 0 {
		cfg.RecentCacheSize = DefaultRecentCacheSize
	}
}
