// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujuc

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/juju/loggo"
)

// LogWriter is a loggo.Writer that sends every entry to juju-log, so it
// shows up in juju debug-log. Entries juju-log refuses are written to the
// fallback writer instead.
type LogWriter struct {
	logger   ContextLogger
	fallback io.Writer
}

// NewLogWriter returns a LogWriter sending entries through logger.
func NewLogWriter(logger ContextLogger, fallback io.Writer) *LogWriter {
	return &LogWriter{logger: logger, fallback: fallback}
}

// Write is part of the loggo.Writer interface.
func (w *LogWriter) Write(entry loggo.Entry) {
	message := fmt.Sprintf("%s %s:%d %s", entry.Module, filepath.Base(entry.Filename), entry.Line, entry.Message)
	if err := w.logger.Log(entry.Level, message); err != nil && w.fallback != nil {
		fmt.Fprintf(w.fallback, "%s %s\n", entry.Level, message)
		fmt.Fprintf(w.fallback, "juju-log failed: %v\n", err)
	}
}
