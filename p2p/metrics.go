// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	metrics "github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsRecieveChSizeGauge = metrics.NewGauge("ledgerd.p2p.recieveCh.size")
	metricsPeersGauge         = metrics.NewGauge("ledgerd.p2p.peers")

	metricsReadMeter      = metrics.NewMeter("ledgerd.p2p.read.request")
	metricsWriteMeter     = metrics.NewMeter("ledgerd.p2p.write.request")
	metricsDuplicateMeter = metrics.NewMeter("ledgerd.p2p.duplicate")
	metricsViolationMeter = metrics.NewMeter("ledgerd.p2p.violation")
	metricsDroppedMeter   = metrics.NewMeter("ledgerd.p2p.dropped")
)
