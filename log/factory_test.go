// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package log

import (
	"testing"

	log "github.com/BOXFoundation/ledgerd/log/types"
	"github.com/facebookgo/ensure"
)

func TestLogrusInit(t *testing.T) {
	var logger = NewLogger("test")
	ensure.NotNil(t, logger)
}

func TestSetLogLevel(t *testing.T) {
	var logger = NewLogger("test")

	for _, level := range []string{"debug", "info", "warning", "error"} {
		ensure.True(t, SetLogLevel(level))
		ensure.DeepEqual(t, logger.LogLevel(), level)
	}

	var oldLevel = logger.LogLevel()
	ensure.False(t, SetLogLevel("unknown"))
	ensure.DeepEqual(t, logger.LogLevel(), oldLevel)
}

func TestWithFields(t *testing.T) {
	var logger = NewLogger("fields")
	child := logger.WithFields(log.Fields{"peer": "QmPeer", "height": 3})
	ensure.NotNil(t, child)
	ensure.DeepEqual(t, child.LogLevel(), logger.LogLevel())
}
