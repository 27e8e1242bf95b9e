// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package legenddb

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/hook"
	"github.com/canonical/legend-database-manager/jujuc"
)

var logger = loggo.GetLogger("legenddb")

// DefaultRelationName is the endpoint Legend services use to relate to the
// database manager.
const DefaultRelationName = "legend-db"

// NoRelation asks the Consumer to use the only relation on its endpoint.
const NoRelation = hook.NoRelation

// ConsumerContext is the subset of the hook context a Consumer needs.
type ConsumerContext interface {
	jujuc.ContextRelations
}

// Consumer reads the database credentials published on a legend-db
// relation. It is what Legend service charms use.
type Consumer struct {
	ctx          ConsumerContext
	relationName string
}

// NewConsumer returns a Consumer of the named endpoint.
func NewConsumer(ctx ConsumerContext, relationName string) *Consumer {
	if relationName == "" {
		relationName = DefaultRelationName
	}
	return &Consumer{ctx: ctx, relationName: relationName}
}

// DatabaseCredentials returns the credentials the database manager
// published in the relation. With NoRelation, the single relation on the
// endpoint is used. An empty value and no error are returned when there is
// no relation or no credentials yet.
func (c *Consumer) DatabaseCredentials(relationId int) (DatabaseCredentials, error) {
	if relationId == NoRelation {
		ids, err := c.ctx.RelationIds(c.relationName)
		if err != nil {
			return DatabaseCredentials{}, errors.Trace(err)
		}
		switch len(ids) {
		case 0:
			return DatabaseCredentials{}, nil
		case 1:
			relationId = ids[0]
		default:
			return DatabaseCredentials{}, errors.Errorf("%d %q relations, expected one", len(ids), c.relationName)
		}
	}
	app, err := c.ctx.RemoteApplication(relationId)
	if err != nil {
		return DatabaseCredentials{}, errors.Trace(err)
	}
	if app == "" {
		return DatabaseCredentials{}, nil
	}
	data, err := c.ctx.ApplicationSettings(relationId, app)
	if err != nil {
		return DatabaseCredentials{}, errors.Trace(err)
	}
	raw, err := GetDatabaseCredentialsFromRelationData(data)
	if err != nil {
		return DatabaseCredentials{}, errors.Trace(err)
	}
	if len(raw) == 0 {
		return DatabaseCredentials{}, nil
	}
	if err := ValidateCredentials(raw); err != nil {
		logger.Warningf("invalid credentials in relation %d: %v", relationId, err)
		return DatabaseCredentials{}, errors.Trace(err)
	}
	return DatabaseCredentials{
		URI:      raw["uri"].(string),
		Username: raw["username"].(string),
		Password: raw["password"].(string),
		Database: raw["database"].(string),
	}, nil
}
