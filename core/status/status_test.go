// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status_test

import (
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/legend-database-manager/core/status"
)

type statusSuite struct{}

var _ = gc.Suite(&statusSuite{})

func (s *statusSuite) TestConstructors(c *gc.C) {
	c.Check(status.BlockedStatus("requires relating to: %s", "mongodb-k8s"), jc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "requires relating to: mongodb-k8s",
	})
	c.Check(status.WaitingStatus("waiting"), jc.DeepEquals, status.StatusInfo{
		Status:  status.Waiting,
		Message: "waiting",
	})
	c.Check(status.ActiveStatus(), jc.DeepEquals, status.StatusInfo{Status: status.Active})
}

func (s *statusSuite) TestString(c *gc.C) {
	c.Check(status.ActiveStatus().String(), gc.Equals, "active")
	c.Check(status.WaitingStatus("hold on").String(), gc.Equals, "waiting: hold on")
}

func (s *statusSuite) TestIsZero(c *gc.C) {
	c.Check(status.StatusInfo{}.IsZero(), jc.IsTrue)
	c.Check(status.ActiveStatus().IsZero(), jc.IsFalse)
}

func (s *statusSuite) TestValidate(c *gc.C) {
	for _, st := range []status.Status{status.Active, status.Blocked, status.Waiting, status.Maintenance} {
		c.Check(status.StatusInfo{Status: st}.Validate(), jc.ErrorIsNil)
	}
	for _, st := range []status.Status{status.Empty, status.Unknown, "error"} {
		err := status.StatusInfo{Status: st}.Validate()
		c.Check(err, jc.ErrorIs, errors.NotValid)
	}
}
