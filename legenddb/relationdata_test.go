// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package legenddb_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/legend-database-manager/legenddb"
)

type relationDataSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&relationDataSuite{})

func (s *relationDataSuite) TestSetInvalid(c *gc.C) {
	data := map[string]string{}
	err := legenddb.SetDatabaseCredentialsInRelationData(data, map[string]string{"totally": "invalid"})
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	c.Check(data, gc.HasLen, 0)
}

func (s *relationDataSuite) TestSetValid(c *gc.C) {
	data := map[string]string{}
	creds := map[string]string{
		"uri":      "testuri",
		"username": "testuser",
		"password": "testpass",
		"database": "testdb",
	}
	err := legenddb.SetDatabaseCredentialsInRelationData(data, creds)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(data[legenddb.RelationDataKey], jc.JSONEquals, creds)
}

func (s *relationDataSuite) TestRoundTrip(c *gc.C) {
	data := map[string]string{"unrelated": "value"}
	creds := legenddb.DatabaseCredentials{
		URI:      "mongodb://host:27017",
		Username: "testuser",
		Password: "testpass",
		Database: "testdb",
	}
	err := legenddb.SetDatabaseCredentialsInRelationData(data, &creds)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(data["unrelated"], gc.Equals, "value")

	read, err := legenddb.GetDatabaseCredentialsFromRelationData(data)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(read, jc.DeepEquals, creds.Map())
}

func (s *relationDataSuite) TestGetMissing(c *gc.C) {
	read, err := legenddb.GetDatabaseCredentialsFromRelationData(map[string]string{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(read, gc.HasLen, 0)

	read, err = legenddb.GetDatabaseCredentialsFromRelationData(nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(read, gc.HasLen, 0)
}

func (s *relationDataSuite) TestGetDoesNotValidate(c *gc.C) {
	data := map[string]string{legenddb.RelationDataKey: `{"totally":"invalid"}`}
	read, err := legenddb.GetDatabaseCredentialsFromRelationData(data)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(read, jc.DeepEquals, map[string]interface{}{"totally": "invalid"})
}

func (s *relationDataSuite) TestGetBadJSON(c *gc.C) {
	data := map[string]string{legenddb.RelationDataKey: `{`}
	_, err := legenddb.GetDatabaseCredentialsFromRelationData(data)
	c.Assert(err, gc.ErrorMatches, `decoding "legend-db-connection": .*`)
}
