// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/legend-database-manager/charm"
)

const legendMeta = `
name: finos-legend-db-k8s
summary: Legend database manager
description: |
  Brokers MongoDB credentials to Legend services.
requires:
  db:
    interface: mongodb
provides:
  legend-db: legend_mongodb
`

type metaSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&metaSuite{})

func (s *metaSuite) TestReadMeta(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(legendMeta))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Name, gc.Equals, "finos-legend-db-k8s")
	c.Check(meta.Requires, jc.DeepEquals, map[string]charm.Relation{
		"db": {Interface: "mongodb", Limit: 1},
	})
	c.Check(meta.Provides, jc.DeepEquals, map[string]charm.Relation{
		"legend-db": {Interface: "legend_mongodb"},
	})
	c.Check(meta.CheckRelations(), jc.ErrorIsNil)
}

func (s *metaSuite) TestReadMetaIgnoresOtherRelationKeys(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: manager
requires:
  db:
    interface: mongodb
    optional: true
    limit: 3
    scope: container
peers:
  cluster: legend_peers
`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Requires["db"], jc.DeepEquals, charm.Relation{Interface: "mongodb", Limit: 3})
}

func (s *metaSuite) TestCheckRelationsMongoLimit(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: manager
requires:
  db:
    interface: mongodb
    limit: 2
provides:
  legend-db: legend_mongodb
`))
	c.Assert(err, jc.ErrorIsNil)
	err = meta.CheckRelations()
	c.Check(err, jc.ErrorIs, errors.NotValid)
	c.Check(err, gc.ErrorMatches, `relation "db" limit 2 \(expected 1\) not valid`)
}

func (s *metaSuite) TestReadMetaInvalid(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader("summary: no name\n"))
	c.Check(err, gc.ErrorMatches, `metadata: name: expected string, got nothing`)

	_, err = charm.ReadMeta(strings.NewReader("name: [\n"))
	c.Check(err, gc.ErrorMatches, `metadata: yaml: .*`)
}

func (s *metaSuite) TestCheckRelationsMissing(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: manager
provides:
  legend-db: legend_mongodb
`))
	c.Assert(err, jc.ErrorIsNil)
	err = meta.CheckRelations()
	c.Check(err, jc.ErrorIs, errors.NotFound)
	c.Check(err, gc.ErrorMatches, `requires relation "db" in charm "manager" not found`)
}

func (s *metaSuite) TestCheckRelationsWrongInterface(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: manager
requires:
  db: postgresql
provides:
  legend-db: legend_mongodb
`))
	c.Assert(err, jc.ErrorIsNil)
	err = meta.CheckRelations()
	c.Check(err, jc.ErrorIs, errors.NotValid)
	c.Check(err, gc.ErrorMatches, `relation "db" interface "postgresql" \(expected "mongodb"\) not valid`)
}

func (s *metaSuite) TestReadMetadata(c *gc.C) {
	dir := c.MkDir()
	err := os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte(legendMeta), 0644)
	c.Assert(err, jc.ErrorIsNil)

	meta, err := charm.ReadMetadata(dir)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Name, gc.Equals, "finos-legend-db-k8s")

	_, err = charm.ReadMetadata(c.MkDir())
	c.Check(err, jc.ErrorIs, os.ErrNotExist)
}

func (s *metaSuite) TestShippedMetadata(c *gc.C) {
	meta, err := charm.ReadMetadata("..")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Name, gc.Equals, "finos-legend-db-k8s")
	c.Check(meta.CheckRelations(), jc.ErrorIsNil)
}
