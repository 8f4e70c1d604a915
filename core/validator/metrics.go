// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/BOXFoundation/ledgerd/metrics"
)

var (
	metricsProofTimer     = metrics.NewTimer("ledgerd.validator.proof.verify")
	metricsProofCacheHit  = metrics.NewCounter("ledgerd.validator.proof.cachehit")
	metricsProofFailMeter = metrics.NewMeter("ledgerd.validator.proof.fail")
	metricsBlockTimer     = metrics.NewTimer("ledgerd.validator.block.apply")
)
