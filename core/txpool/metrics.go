// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package txpool

import (
	"github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsTxPoolSizeGauge = metrics.NewGauge("ledgerd.txpool.size")
	metricsAdmittedMeter   = metrics.NewMeter("ledgerd.txpool.admitted")
	metricsRejectedMeter   = metrics.NewMeter("ledgerd.txpool.rejected")
	metricsEvictedCounter  = metrics.NewCounter("ledgerd.txpool.evicted")
)
