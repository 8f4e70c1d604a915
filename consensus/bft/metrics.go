// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import (
	"github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsRoundGauge          = metrics.NewGauge("ledgerd.bft.round")
	metricsProposeCounter      = metrics.NewCounter("ledgerd.bft.propose")
	metricsVoteCounter         = metrics.NewCounter("ledgerd.bft.vote")
	metricsTimeoutCounter      = metrics.NewCounter("ledgerd.bft.timeout")
	metricsStaleResultCounter  = metrics.NewCounter("ledgerd.bft.stale_result")
	metricsEquivocationCounter = metrics.NewCounter("ledgerd.bft.equivocation")
	metricsConflictCounter     = metrics.NewCounter("ledgerd.bft.conflict")
	metricsRoundEvictCounter   = metrics.NewCounter("ledgerd.bft.round_evict")
	metricsCommitTimer         = metrics.NewTimer("ledgerd.bft.commit")
)
