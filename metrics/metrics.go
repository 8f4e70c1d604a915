// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"time"

	"github.com/BOXFoundation/ledgerd/log"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/rcrowley/go-metrics/exp"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

var logger = log.NewLogger("metrics")

const defaultInterval = 10 * time.Second

func init() {
	exp.Exp(metrics.DefaultRegistry)
}

// Run starts the influxdb reporter if enabled. The reporter runs until the
// process exits.
func Run(config *Config) {
	if config == nil || !config.Enable {
		return
	}
	interval := config.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	tags := parseTags(config.Tags)
	logger.Infof("Reporting metrics to %s/%s every %v", config.Host, config.Db, interval)
	go influxdb.InfluxDBWithTags(metrics.DefaultRegistry, interval, config.Host, config.Db, config.User, config.Password, tags)
}

// parseTags converts "key:value" pairs into a tag map, skipping malformed ones.
func parseTags(raw []string) map[string]string {
	tags := make(map[string]string)
	for _, v := range raw {
		values := strings.SplitN(v, ":", 2)
		if len(values) != 2 || values[0] == "" {
			logger.Warnf("Ignore malformed metrics tag %q", v)
			continue
		}
		tags[values[0]] = values[1]
	}
	return tags
}

// NewCounter create a new metrics Counter
func NewCounter(name string) metrics.Counter {
	return metrics.GetOrRegisterCounter(name, metrics.DefaultRegistry)
}

// NewMeter create a new metrics Meter
func NewMeter(name string) metrics.Meter {
	return metrics.GetOrRegisterMeter(name, metrics.DefaultRegistry)
}

// NewTimer create a new metrics Timer
func NewTimer(name string) metrics.Timer {
	return metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry)
}

// NewGauge create a new metrics Gauge
func NewGauge(name string) metrics.Gauge {
	return metrics.GetOrRegisterGauge(name, metrics.DefaultRegistry)
}
