// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package log

import (
	"sync"

	ll "github.com/BOXFoundation/ledgerd/log/logrus"
	log "github.com/BOXFoundation/ledgerd/log/types"
)

// Fields is re-exported so callers need only this package.
type Fields = log.Fields

var (
	loggerMap = map[string]log.Logger{}
	mapLock   sync.Mutex
)

// Setup loggers globally
func Setup(cfg *log.Config) {
	log.Setup(ll.LoggerName, cfg)
}

// NewLogger creates a new logger.
func NewLogger(tag string) log.Logger {
	newLogger := log.NewLogger(ll.LoggerName, tag)
	if newLogger != nil {
		mapLock.Lock()
		loggerMap[tag] = newLogger
		mapLock.Unlock()
	}
	return newLogger
}

// SetLogLevel sets all loggers log level
func SetLogLevel(newLevel string) (ok bool) {
	mapLock.Lock()
	defer mapLock.Unlock()

	ok = true
	for _, logger := range loggerMap {
		originLevel := logger.LogLevel()
		logger.SetLogLevel(newLevel)
		if currentLevel := logger.LogLevel(); currentLevel != newLevel {
			logger.Infof("Error setting log level from %s to %s", originLevel, newLevel)
			ok = false
		}
	}
	return
}
