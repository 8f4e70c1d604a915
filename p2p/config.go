// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"time"
)

// Config for peer configuration
type Config struct {
	Magic          uint32        `mapstructure:"magic"`
	KeyPath        string        `mapstructure:"key_path"`
	Port           uint32        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	Seeds          []string      `mapstructure:"seeds"`
	MinPeers       int           `mapstructure:"min_peers"`
	MaxPeers       int           `mapstructure:"max_peers"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ReconnectBase  time.Duration `mapstructure:"reconnect_base"`
	ReconnectMax   time.Duration `mapstructure:"reconnect_max"`
	MaintainPeriod time.Duration `mapstructure:"maintain_period"`
	PeerRate       float64       `mapstructure:"peer_rate"`
	PeerBurst      int           `mapstructure:"peer_burst"`
	GlobalRate     float64       `mapstructure:"global_rate"`
	GlobalBurst    int           `mapstructure:"global_burst"`
	MaxViolations  int           `mapstructure:"max_violations"`
	ViolationSpan  time.Duration `mapstructure:"violation_span"`
	BanDuration    time.Duration `mapstructure:"ban_duration"`
	DedupSize      int           `mapstructure:"dedup_size"`
}

// default values
const (
	DefaultPort           = 19199
	DefaultMinPeers       = 4
	DefaultMaxPeers       = 32
	DefaultConnectTimeout = 10 * time.Second
	DefaultPingInterval   = 60 * time.Second
	DefaultIdleTimeout    = 280 * time.Second
	DefaultReconnectBase  = time.Second
	DefaultReconnectMax   = 5 * time.Minute
	DefaultMaintainPeriod = 10 * time.Second
	DefaultPeerRate       = 200
	DefaultPeerBurst      = 400
	DefaultGlobalRate     = 2000
	DefaultGlobalBurst    = 4000
	DefaultMaxViolations  = 10
	DefaultViolationSpan  = time.Minute
	DefaultBanDuration    = 30 * time.Minute
	DefaultDedupSize      = 65536
)

// Fill sets defaults for zero values.
func (cfg *Config) Fill() {
	if cfg.Magic == 0 {
		cfg.Magic = Mainnet
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Address == "" {
		cfg.Address = "0.0.0.0"
	}
	if cfg.MinPeers <= 0 {
		cfg.MinPeers = DefaultMinPeers
	}
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = DefaultMaxPeers
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = DefaultReconnectBase
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = DefaultReconnectMax
	}
	if cfg.MaintainPeriod <= 0 {
		cfg.MaintainPeriod = DefaultMaintainPeriod
	}
	if cfg.PeerRate <= 0 {
		cfg.PeerRate = DefaultPeerRate
	}
	if cfg.PeerBurst <= 0 {
		cfg.PeerBurst = DefaultPeerBurst
	}
	if cfg.GlobalRate <= 0 {
		cfg.GlobalRate = DefaultGlobalRate
	}
	if cfg.GlobalBurst <= 0 {
		cfg.GlobalBurst = DefaultGlobalBurst
	}
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = DefaultMaxViolations
	}
	if cfg.ViolationSpan <= 0 {
		cfg.ViolationSpan = DefaultViolationSpan
	}
	if cfg.BanDuration <= 0 {
		cfg.BanDuration = DefaultBanDuration
	}
	if cfg.DedupSize <= 0 {
		cfg.DedupSize = DefaultDedupSize
	}
}
