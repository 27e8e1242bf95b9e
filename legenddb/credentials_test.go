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

type credentialsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&credentialsSuite{})

const (
	testDB   = "testdb"
	testUser = "testuser"
	testPass = "testpass"
	testURI  = "mongodb://u:p@host:27017/" + testDB
)

func mongoCreds() map[string]interface{} {
	return map[string]interface{}{
		"username":        testUser,
		"password":        testPass,
		"replica_set_uri": testURI,
	}
}

func (s *credentialsSuite) TestValidateCredentialsWrongType(c *gc.C) {
	for _, creds := range []interface{}{nil, 13, []string{"list"}, "creds", (*legenddb.DatabaseCredentials)(nil)} {
		err := legenddb.ValidateCredentials(creds)
		c.Check(err, jc.ErrorIs, errors.NotValid, gc.Commentf("creds %#v", creds))
	}
}

func (s *credentialsSuite) TestValidateCredentialsEmpty(c *gc.C) {
	c.Check(legenddb.IsValidCredentials(map[string]interface{}{}), jc.IsFalse)
	c.Check(legenddb.IsValidCredentials(map[string]string{}), jc.IsFalse)
	c.Check(legenddb.IsValidCredentials(legenddb.DatabaseCredentials{}), jc.IsFalse)
}

func (s *credentialsSuite) TestValidateCredentialsAllKeys(c *gc.C) {
	creds := make(map[string]string)
	for _, k := range legenddb.RequiredCredentialFields.Values() {
		creds[k] = k
	}
	c.Check(legenddb.ValidateCredentials(creds), jc.ErrorIsNil)

	extra := map[string]interface{}{"replica_set_name": "rs0"}
	for k, v := range creds {
		extra[k] = v
	}
	c.Check(legenddb.ValidateCredentials(extra), jc.ErrorIsNil)
}

func (s *credentialsSuite) TestValidateCredentialsMissingKey(c *gc.C) {
	creds := map[string]string{"uri": "u", "username": "u", "password": "p"}
	c.Check(legenddb.IsValidCredentials(creds), jc.IsFalse)
}

func (s *credentialsSuite) TestValidateCredentialsNonStringValue(c *gc.C) {
	creds := map[string]interface{}{"uri": "u", "username": 13, "password": "p", "database": "d"}
	c.Check(legenddb.IsValidCredentials(creds), jc.IsFalse)
}

func (s *credentialsSuite) TestValidateCredentialsStruct(c *gc.C) {
	creds := legenddb.DatabaseCredentials{URI: "u", Username: "u", Password: "p", Database: "d"}
	c.Check(legenddb.ValidateCredentials(creds), jc.ErrorIsNil)
	c.Check(legenddb.ValidateCredentials(&creds), jc.ErrorIsNil)

	creds.Password = ""
	c.Check(legenddb.IsValidCredentials(creds), jc.IsFalse)
}

func (s *credentialsSuite) TestValidateCredentialsEmptyValues(c *gc.C) {
	creds := map[string]interface{}{"uri": "", "username": "u", "password": "p", "database": "d"}
	c.Check(legenddb.ValidateCredentials(creds), jc.ErrorIsNil)

	record := legenddb.DatabaseCredentials{Username: "u", Password: "p", Database: "d"}
	c.Check(legenddb.ValidateCredentials(record), jc.ErrorIs, errors.NotValid)
}

func (s *credentialsSuite) TestGetDatabaseConnectionEmptyURIPrefix(c *gc.C) {
	raw := mongoCreds()
	raw["replica_set_uri"] = "/" + testDB
	creds, err := legenddb.GetDatabaseConnectionFromMongoData(raw, []interface{}{testDB})
	c.Check(err, jc.ErrorIs, errors.NotValid)
	c.Check(creds, gc.Equals, legenddb.DatabaseCredentials{})
}

func (s *credentialsSuite) TestGetDatabaseConnectionFromMongoData(c *gc.C) {
	creds, err := legenddb.GetDatabaseConnectionFromMongoData(mongoCreds(), []interface{}{testDB})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(creds, jc.DeepEquals, legenddb.DatabaseCredentials{
		URI:      "mongodb://u:p@host:27017",
		Username: testUser,
		Password: testPass,
		Database: testDB,
	})
}

func (s *credentialsSuite) TestGetDatabaseConnectionUsesFirstDatabase(c *gc.C) {
	creds, err := legenddb.GetDatabaseConnectionFromMongoData(mongoCreds(), []string{testDB, "otherdb"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(creds.Database, gc.Equals, testDB)

	_, err = legenddb.GetDatabaseConnectionFromMongoData(mongoCreds(), []string{"otherdb", testDB})
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *credentialsSuite) TestGetDatabaseConnectionIgnoresExtraFields(c *gc.C) {
	raw := mongoCreds()
	raw["replica_set_name"] = "rs0"
	raw["port"] = 27017
	_, err := legenddb.GetDatabaseConnectionFromMongoData(raw, []interface{}{testDB})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *credentialsSuite) TestGetDatabaseConnectionInvalid(c *gc.C) {
	badType := mongoCreds()
	badType["username"] = 13
	unsplittable := mongoCreds()
	unsplittable["replica_set_uri"] = "unsplittable"

	for i, t := range []struct {
		about     string
		creds     interface{}
		databases interface{}
	}{
		{"nils", nil, nil},
		{"empty creds", map[string]interface{}{}, nil},
		{"missing keys", map[string]interface{}{"username": "u", "password": "p"}, nil},
		{"bad databases type", mongoCreds(), 13},
		{"no databases", mongoCreds(), nil},
		{"empty databases", mongoCreds(), []interface{}{}},
		{"bad database element", mongoCreds(), []interface{}{13}},
		{"bad type in creds", badType, []interface{}{testDB}},
		{"unsplittable uri", unsplittable, []interface{}{testDB}},
		{"creds not a map", "creds", []interface{}{testDB}},
		{"non-string keys", map[int]string{1: "one"}, []interface{}{testDB}},
	} {
		c.Logf("test %d: %s", i, t.about)
		creds, err := legenddb.GetDatabaseConnectionFromMongoData(t.creds, t.databases)
		c.Check(err, jc.ErrorIs, errors.NotValid)
		c.Check(creds, gc.Equals, legenddb.DatabaseCredentials{})
	}
}

func (s *credentialsSuite) TestRedacted(c *gc.C) {
	creds := legenddb.DatabaseCredentials{URI: "u", Username: "u", Password: "secret", Database: "d"}
	c.Check(creds.Redacted().Password, gc.Equals, "<redacted>")
	c.Check(creds.Password, gc.Equals, "secret")
	c.Check(legenddb.DatabaseCredentials{}.Redacted().Password, gc.Equals, "")
}
