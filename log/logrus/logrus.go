// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logruslog

import (
	source "github.com/BOXFoundation/ledgerd/log/logrus/hooks/source"
	log "github.com/BOXFoundation/ledgerd/log/types"
	"github.com/heirko/go-contrib/logrusHelper"
	mate "github.com/heralight/logrus_mate"
	_ "github.com/heralight/logrus_mate/hooks/file" // file log hook
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

var _ log.Logger = (*logrusLogger)(nil)

var defaultLogrusLogger = logrus.New()

// LoggerName is the name of the logger impl
const LoggerName = "logrus"

func init() {
	defaultLogrusLogger.AddHook(source.NewHook())

	log.Register(LoggerName, &log.LoggerEntry{
		Setup:     Setup,
		NewLogger: NewLogger,
	})
}

// Setup setups logrus logger
func Setup(cfg *log.Config) {
	logrusHelper.SetConfig(
		defaultLogrusLogger,
		mate.LoggerConfig(*cfg),
	)
}

// NewLogger creates a new logrus logger.
func NewLogger(tag string) log.Logger {
	return &logrusLogger{
		logger: defaultLogrusLogger,
		fields: logrus.Fields{"tag": tag},
	}
}

func (l *logrusLogger) entry() *logrus.Entry {
	return l.logger.WithFields(l.fields)
}

// WithFields returns a child logger carrying extra fields.
func (l *logrusLogger) WithFields(fields log.Fields) log.Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &logrusLogger{logger: l.logger, fields: merged}
}

// SetLogLevel is to set the log level
func (l *logrusLogger) SetLogLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.logger.SetLevel(lvl)
	}
}

// LogLevel returns the log level
func (l *logrusLogger) LogLevel() string {
	return l.logger.Level.String()
}

// Debugf prints Debug level log
func (l *logrusLogger) Debugf(f string, v ...interface{}) {
	l.entry().Debugf(f, v...)
}

// Debug prints Debug level log
func (l *logrusLogger) Debug(v ...interface{}) {
	l.entry().Debug(v...)
}

// Infof prints Info level log
func (l *logrusLogger) Infof(f string, v ...interface{}) {
	l.entry().Infof(f, v...)
}

// Info prints Info level log
func (l *logrusLogger) Info(v ...interface{}) {
	l.entry().Info(v...)
}

// Warnf prints Warn level log
func (l *logrusLogger) Warnf(f string, v ...interface{}) {
	l.entry().Warnf(f, v...)
}

// Warn prints Warn level log
func (l *logrusLogger) Warn(v ...interface{}) {
	l.entry().Warn(v...)
}

// Errorf prints Error level log
func (l *logrusLogger) Errorf(f string, v ...interface{}) {
	l.entry().Errorf(f, v...)
}

// Error prints Error level log
func (l *logrusLogger) Error(v ...interface{}) {
	l.entry().Error(v...)
}

// Fatalf prints Fatal level log
func (l *logrusLogger) Fatalf(f string, v ...interface{}) {
	l.entry().Fatalf(f, v...)
}

// Fatal prints Fatal level log
func (l *logrusLogger) Fatal(v ...interface{}) {
	l.entry().Fatal(v...)
}

// Panicf prints Panic level log
func (l *logrusLogger) Panicf(f string, v ...interface{}) {
	l.entry().Panicf(f, v...)
}

// Panic prints Panic level log
func (l *logrusLogger) Panic(v ...interface{}) {
	l.entry().Panic(v...)
}
