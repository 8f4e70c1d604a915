// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package source

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	sourceField = "source"
	callerSkip  = 5
	maxFrames   = 10
)

// Hook attaches the file:line of the real caller to every entry.
type Hook struct {
	field  string
	skip   int
	levels []logrus.Level
}

var _ logrus.Hook = (*Hook)(nil)

// NewHook creates a source hook firing on the given levels, or on all levels
// if none is specified.
func NewHook(levels ...logrus.Level) *Hook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &Hook{field: sourceField, skip: callerSkip, levels: levels}
}

// Levels implements logrus.Hook.
func (hook *Hook) Levels() []logrus.Level {
	return hook.levels
}

// Fire implements logrus.Hook.
func (hook *Hook) Fire(entry *logrus.Entry) error {
	file, line := findCaller(hook.skip)
	entry.Data[hook.field] = fmt.Sprintf("%s:%d", file, line)
	return nil
}

// findCaller walks up the stack until it leaves logrus and the logger facade.
func findCaller(skip int) (string, int) {
	for i := 0; i < maxFrames; i++ {
		_, file, line, ok := runtime.Caller(skip + i)
		if !ok {
			return "", 0
		}
		if strings.Contains(file, "logrus") {
			continue
		}
		return trimPath(file), line
	}
	return "", 0
}

// trimPath keeps the last two path elements, e.g. "chain/blockchain.go".
func trimPath(file string) string {
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n == 2 {
				return file[i+1:]
			}
		}
	}
	return file
}
