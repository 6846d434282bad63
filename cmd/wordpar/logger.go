// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// defaultLogger logs to the Go stdlib logs.
type defaultLogger struct{}

var _ Logger = defaultLogger{}

// Infof implements the Logger.Infof interface.
func (defaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (defaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// quietLogger discards informational messages.
type quietLogger struct {
	defaultLogger
}

// Infof implements the Logger.Infof interface.
func (quietLogger) Infof(format string, args ...interface{}) {}

func makeLogger() Logger {
	if verbose {
		return defaultLogger{}
	}
	return quietLogger{}
}
