// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsHeightGauge     = metrics.NewGauge("ledgerd.chain.height")
	metricsCommitTimer     = metrics.NewTimer("ledgerd.chain.commit")
	metricsConflictCounter = metrics.NewCounter("ledgerd.chain.conflict")
	metricsInvalidMeter    = metrics.NewMeter("ledgerd.chain.invalid")
	metricsBlockCacheGauge = metrics.NewGauge("ledgerd.chain.blockcache")
)
