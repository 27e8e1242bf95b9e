// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package mongodb consumes the "mongodb" relation interface offered by the
// mongodb-k8s charm.
package mongodb

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/hook"
	"github.com/canonical/legend-database-manager/jujuc"
)

var logger = loggo.GetLogger("legenddb.mongodb")

const (
	// credentialsKey holds the JSON credentials in MongoDB's application
	// data.
	credentialsKey = "credentials"

	// databasesKey holds the JSON list of databases. MongoDB publishes the
	// created databases under it, and consumers request new ones by
	// publishing the names they want under the same key.
	databasesKey = "databases"
)

// ConsumerContext is the subset of the hook context a Consumer needs.
type ConsumerContext interface {
	jujuc.ContextUnit
	jujuc.ContextLeadership
	jujuc.ContextRelations
}

// Consumer reads credentials and databases provided by MongoDB on a
// relation endpoint, and requests new databases.
type Consumer struct {
	ctx          ConsumerContext
	relationName string
	newName      func() string
}

// NewConsumer returns a Consumer of the named relation endpoint.
func NewConsumer(ctx ConsumerContext, relationName string) *Consumer {
	return &Consumer{
		ctx:          ctx,
		relationName: relationName,
		newName:      newDatabaseName,
	}
}

func newDatabaseName() string {
	return fmt.Sprintf("legend_%s", uuid.NewString())
}

// Credentials returns the credentials MongoDB published on the relation,
// or nil if it has not done so yet. hook.NoRelation selects the single
// relation on the endpoint.
func (c *Consumer) Credentials(relationId int) (map[string]interface{}, error) {
	data, err := c.remoteData(relationId)
	if err != nil || data == nil {
		return nil, errors.Trace(err)
	}
	encoded, ok := data[credentialsKey]
	if !ok || encoded == "" {
		return nil, nil
	}
	var creds map[string]interface{}
	if err := json.Unmarshal([]byte(encoded), &creds); err != nil {
		return nil, errors.NewNotValid(err, "mongodb credentials")
	}
	return creds, nil
}

// Databases returns the databases MongoDB created for this application.
// hook.NoRelation selects the single relation on the endpoint.
func (c *Consumer) Databases(relationId int) ([]interface{}, error) {
	data, err := c.remoteData(relationId)
	if err != nil || data == nil {
		return nil, errors.Trace(err)
	}
	return decodeDatabases(data[databasesKey])
}

// NewDatabase asks MongoDB for a new database on the single relation. It
// does nothing on non-leader units or while a request is outstanding, so it
// is safe to call repeatedly.
func (c *Consumer) NewDatabase() error {
	leader, err := c.ctx.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		logger.Debugf("not requesting a database: %q is not the leader", c.ctx.UnitName())
		return nil
	}
	relationId, err := c.relationId(hook.NoRelation)
	if err != nil {
		return errors.Trace(err)
	}
	if relationId == hook.NoRelation {
		return errors.NotFoundf("%q relation", c.relationName)
	}
	local, err := c.ctx.ApplicationSettings(relationId, c.ctx.ApplicationName())
	if err != nil {
		return errors.Trace(err)
	}
	requested, err := decodeDatabases(local[databasesKey])
	if err != nil {
		return errors.Trace(err)
	}
	if len(requested) > 0 {
		logger.Debugf("database already requested on relation %d: %v", relationId, requested)
		return nil
	}
	name := c.newName()
	encoded, err := json.Marshal([]string{name})
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("requesting database %q on relation %d", name, relationId)
	return errors.Trace(c.ctx.SetApplicationSettings(relationId, map[string]string{
		databasesKey: string(encoded),
	}))
}

// remoteData returns MongoDB's application data on the relation, or nil if
// there is no relation or MongoDB has not joined it yet.
func (c *Consumer) remoteData(relationId int) (map[string]string, error) {
	relationId, err := c.relationId(relationId)
	if err != nil || relationId == hook.NoRelation {
		return nil, errors.Trace(err)
	}
	app, err := c.ctx.RemoteApplication(relationId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if app == "" {
		return nil, nil
	}
	data, err := c.ctx.ApplicationSettings(relationId, app)
	return data, errors.Trace(err)
}

// relationId resolves hook.NoRelation to the only relation on the
// endpoint. It returns hook.NoRelation if there is none.
func (c *Consumer) relationId(relationId int) (int, error) {
	if relationId != hook.NoRelation {
		return relationId, nil
	}
	ids, err := c.ctx.RelationIds(c.relationName)
	if err != nil {
		return hook.NoRelation, errors.Trace(err)
	}
	switch len(ids) {
	case 0:
		return hook.NoRelation, nil
	case 1:
		return ids[0], nil
	}
	return hook.NoRelation, errors.Errorf("too many %q relations: %v", c.relationName, ids)
}

func decodeDatabases(encoded string) ([]interface{}, error) {
	if encoded == "" {
		return []interface{}{}, nil
	}
	var databases []interface{}
	if err := json.Unmarshal([]byte(encoded), &databases); err != nil {
		return nil, errors.NewNotValid(err, "mongodb databases")
	}
	return databases, nil
}
