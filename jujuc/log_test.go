// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujuc_test

import (
	"bytes"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/legend-database-manager/jujuc"
	jujuctesting "github.com/canonical/legend-database-manager/jujuc/testing"
)

type logWriterSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&logWriterSuite{})

func (s *logWriterSuite) entry() loggo.Entry {
	return loggo.Entry{
		Level:     loggo.INFO,
		Module:    "legenddb.charm",
		Filename:  "/src/charm/charm.go",
		Line:      42,
		Timestamp: time.Now(),
		Message:   "hello",
	}
}

func (s *logWriterSuite) TestWrite(c *gc.C) {
	ctx := jujuctesting.NewContext(&testing.Stub{}, "legend-db/0", "legend-db")
	var fallback bytes.Buffer
	w := jujuc.NewLogWriter(ctx, &fallback)
	w.Write(s.entry())
	c.Check(ctx.Logs, jc.DeepEquals, []jujuctesting.LogEntry{{
		Level:   loggo.INFO,
		Message: "legenddb.charm charm.go:42 hello",
	}})
	c.Check(fallback.String(), gc.Equals, "")
}

func (s *logWriterSuite) TestWriteFallback(c *gc.C) {
	var fallback bytes.Buffer
	w := jujuc.NewLogWriter(failingLogger{}, &fallback)
	w.Write(s.entry())
	c.Check(fallback.String(), gc.Equals, ""+
		"INFO legenddb.charm charm.go:42 hello\n"+
		"juju-log failed: no juju-log here\n")
}

type failingLogger struct{}

func (failingLogger) Log(loggo.Level, string) error {
	return errors.New("no juju-log here")
}
