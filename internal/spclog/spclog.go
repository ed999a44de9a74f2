// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package spclog provides the injectable debug logging shim used by the
// space packet demultiplexer and the PUS verificator. It is nil-safe: a
// nil Provider behaves as a no-op, so callers never have to construct one
// just to satisfy the API.
package spclog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Provider is the logging interface accepted at package boundaries
// throughout this module. RFC5424 levels Debug/Warn/Error/Critical only,
// matching the teacher's own LogProvider shape.
type Provider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Clog wraps a Provider with an on/off switch so callers can construct a
// logger once and toggle its output without reconstructing it.
type Clog struct {
	provider Provider
	has      uint32
}

// NewLogger creates a Clog whose default provider is a logrus.Logger
// tagged with the given field, output disabled until LogMode(true).
func NewLogger(component string) Clog {
	base := logrus.New()
	return Clog{
		provider: logrusProvider{base.WithField("component", component)},
	}
}

// LogMode enables or disables log output.
func (sf *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetProvider overrides the logging backend.
func (sf *Clog) SetProvider(p Provider) {
	if p != nil {
		sf.provider = p
	}
}

// Critical logs a CRITICAL level message.
func (sf Clog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

// Error logs an ERROR level message.
func (sf Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs a WARN level message.
func (sf Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs a DEBUG level message.
func (sf Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// logrusProvider adapts a *logrus.Entry to Provider.
type logrusProvider struct {
	entry *logrus.Entry
}

var _ Provider = logrusProvider{}

func (sf logrusProvider) Critical(format string, v ...interface{}) {
	sf.entry.Errorf("[CRITICAL] "+format, v...)
}

func (sf logrusProvider) Error(format string, v ...interface{}) {
	sf.entry.Errorf(format, v...)
}

func (sf logrusProvider) Warn(format string, v ...interface{}) {
	sf.entry.Warnf(format, v...)
}

func (sf logrusProvider) Debug(format string, v ...interface{}) {
	sf.entry.Debugf(format, v...)
}
