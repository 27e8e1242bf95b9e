// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"io"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

// Relation represents a single relation defined in the charm
// metadata.yaml file.
type Relation struct {
	Interface string
	Limit     int
}

// Meta represents the parts of a charm's metadata.yaml file the charm
// checks at runtime.
type Meta struct {
	Name     string
	Provides map[string]Relation
	Requires map[string]Relation
}

// ReadMetadata reads metadata.yaml from the charm directory.
func ReadMetadata(charmDir string) (*Meta, error) {
	f, err := os.Open(filepath.Join(charmDir, "metadata.yaml"))
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	return ReadMeta(f)
}

// ReadMeta reads the content of a metadata.yaml file and returns
// its representation.
func ReadMeta(r io.Reader) (*Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	v, err := charmSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	m := v.(map[string]interface{})
	meta := &Meta{
		Name:     m["name"].(string),
		Provides: parseRelations(m["provides"]),
		Requires: parseRelations(m["requires"]),
	}
	return meta, nil
}

// CheckRelations returns an error unless the metadata declares the
// relations the legend database manager handles. MongoDB must be limited to
// a single relation, which is the one used when none is named.
func (meta *Meta) CheckRelations() error {
	for _, check := range []struct {
		relations map[string]Relation
		role      string
		name      string
		iface     string
	}{
		{meta.Requires, "requires", MongoDBRelationName, "mongodb"},
		{meta.Provides, "provides", LegendDBRelationName, "legend_mongodb"},
	} {
		rel, ok := check.relations[check.name]
		if !ok {
			return errors.NotFoundf("%s relation %q in charm %q", check.role, check.name, meta.Name)
		}
		if rel.Interface != check.iface {
			return errors.NotValidf("relation %q interface %q (expected %q)", check.name, rel.Interface, check.iface)
		}
	}
	if limit := meta.Requires[MongoDBRelationName].Limit; limit != 1 {
		return errors.NotValidf("relation %q limit %d (expected 1)", MongoDBRelationName, limit)
	}
	return nil
}

func parseRelations(relations interface{}) map[string]Relation {
	if relations == nil {
		return nil
	}
	result := make(map[string]Relation)
	for name, rel := range relations.(map[interface{}]interface{}) {
		relMap := rel.(map[string]interface{})
		relation := Relation{
			Interface: relMap["interface"].(string),
		}
		if relMap["limit"] != nil {
			// Schema defaults to int64, but we know
			// the int range should be more than enough.
			relation.Limit = int(relMap["limit"].(int64))
		}
		result[name.(string)] = relation
	}
	return result
}

// Schema coercer that expands the interface shorthand notation.
// A consistent format is easier to work with than considering the
// potential difference everywhere.
//
// Supports the following variants::
//
//	provides:
//	  legend-db: legend_mongodb
//
//	requires:
//	  db:
//	    interface: mongodb
//	    limit: 1
//
// In all input cases, the output is the fully specified interface
// representation as seen in the mongodb interface description above.
// Other relation keys (optional, scope) are accepted and ignored.
func ifaceExpander(limit interface{}) schema.Checker {
	return ifaceExpC{limit}
}

type ifaceExpC struct {
	limit interface{}
}

var (
	stringC = schema.String()
	mapC    = schema.StringMap(schema.Any())
)

func (c ifaceExpC) Coerce(v interface{}, path []string) (interface{}, error) {
	s, err := stringC.Coerce(v, path)
	if err == nil {
		return ifaceSchema.Coerce(map[string]interface{}{
			"interface": s,
			"limit":     c.limit,
		}, path)
	}

	v, err = mapC.Coerce(v, path)
	if err != nil {
		return nil, err
	}
	m := v.(map[string]interface{})
	if _, ok := m["limit"]; !ok {
		m["limit"] = c.limit
	}
	return ifaceSchema.Coerce(m, path)
}

var ifaceSchema = schema.FieldMap(
	schema.Fields{
		"interface": schema.String(),
		"limit":     schema.OneOf(schema.Const(nil), schema.Int()),
	},
	nil,
)

var charmSchema = schema.FieldMap(
	schema.Fields{
		"name":     schema.String(),
		"provides": schema.Map(schema.String(), ifaceExpander(nil)),
		"requires": schema.Map(schema.String(), ifaceExpander(1)),
	},
	schema.Defaults{
		"provides": schema.Omit,
		"requires": schema.Omit,
	},
)
