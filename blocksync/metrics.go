// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import (
	"github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsTargetGauge     = metrics.NewGauge("ledgerd.blocksync.target")
	metricsSyncedMeter     = metrics.NewMeter("ledgerd.blocksync.blocks")
	metricsBulkCounter     = metrics.NewCounter("ledgerd.blocksync.bulk")
	metricsStallCounter    = metrics.NewCounter("ledgerd.blocksync.stall")
	metricsBadPeerCounter  = metrics.NewCounter("ledgerd.blocksync.bad_peer")
	metricsServedCounter   = metrics.NewCounter("ledgerd.blocksync.served")
	metricsChunkFetchTimer = metrics.NewTimer("ledgerd.blocksync.fetch")
)
