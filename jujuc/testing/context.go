// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"sort"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/testing"

	"github.com/canonical/legend-database-manager/core/status"
	"github.com/canonical/legend-database-manager/jujuc"
)

// Relation holds the test data for a single relation.
type Relation struct {
	Id                int
	Endpoint          string
	RemoteApplication string

	// Settings holds the application data bags in the relation, keyed on
	// application name.
	Settings map[string]map[string]string
}

// LogEntry is a message sent to juju-log.
type LogEntry struct {
	Level   loggo.Level
	Message string
}

// Context is an in-memory test double for jujuc.Context. Every call is
// recorded on Stub, and errors set on Stub are returned in call order.
type Context struct {
	Stub *testing.Stub

	Unit        string
	Application string
	Leader      bool

	Status    status.StatusInfo
	Relations map[int]*Relation
	Config    map[string]interface{}
	State     map[string]string
	Logs      []LogEntry

	nextRelationId int
}

var _ jujuc.Context = (*Context)(nil)

// NewContext returns a Context for the given unit with no relations.
func NewContext(stub *testing.Stub, unit, application string) *Context {
	return &Context{
		Stub:        stub,
		Unit:        unit,
		Application: application,
		Relations:   make(map[int]*Relation),
		Config:      make(map[string]interface{}),
		State:       make(map[string]string),
	}
}

// AddRelation establishes a relation on the endpoint with the remote
// application and returns its id.
func (c *Context) AddRelation(endpoint, remoteApplication string) int {
	id := c.nextRelationId
	c.nextRelationId++
	c.Relations[id] = &Relation{
		Id:                id,
		Endpoint:          endpoint,
		RemoteApplication: remoteApplication,
		Settings:          make(map[string]map[string]string),
	}
	return id
}

// RemoveRelation drops the relation with the given id.
func (c *Context) RemoveRelation(id int) {
	delete(c.Relations, id)
}

// UpdateApplicationSettings replaces keys in the application's data bag
// without recording a call, as a remote unit would.
func (c *Context) UpdateApplicationSettings(id int, application string, settings map[string]string) {
	rel := c.Relations[id]
	bag := rel.Settings[application]
	if bag == nil {
		bag = make(map[string]string)
		rel.Settings[application] = bag
	}
	for k, v := range settings {
		bag[k] = v
	}
}

// LocalSettings returns the local application's data bag in the relation.
func (c *Context) LocalSettings(id int) map[string]string {
	return c.Relations[id].Settings[c.Application]
}

// UnitName is part of the jujuc.ContextUnit interface.
func (c *Context) UnitName() string {
	return c.Unit
}

// ApplicationName is part of the jujuc.ContextUnit interface.
func (c *Context) ApplicationName() string {
	return c.Application
}

// SetUnitStatus is part of the jujuc.ContextStatus interface.
func (c *Context) SetUnitStatus(info status.StatusInfo) error {
	c.Stub.AddCall("SetUnitStatus", info)
	if err := c.Stub.NextErr(); err != nil {
		return errors.Trace(err)
	}
	c.Status = info
	return nil
}

// IsLeader is part of the jujuc.ContextLeadership interface.
func (c *Context) IsLeader() (bool, error) {
	c.Stub.AddCall("IsLeader")
	if err := c.Stub.NextErr(); err != nil {
		return false, errors.Trace(err)
	}
	return c.Leader, nil
}

// RelationIds is part of the jujuc.ContextRelations interface.
func (c *Context) RelationIds(endpoint string) ([]int, error) {
	c.Stub.AddCall("RelationIds", endpoint)
	if err := c.Stub.NextErr(); err != nil {
		return nil, errors.Trace(err)
	}
	ids := []int{}
	for id, rel := range c.Relations {
		if rel.Endpoint == endpoint {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// RemoteApplication is part of the jujuc.ContextRelations interface.
func (c *Context) RemoteApplication(id int) (string, error) {
	c.Stub.AddCall("RemoteApplication", id)
	if err := c.Stub.NextErr(); err != nil {
		return "", errors.Trace(err)
	}
	rel, err := c.relation(id)
	if err != nil {
		return "", errors.Trace(err)
	}
	return rel.RemoteApplication, nil
}

// ApplicationSettings is part of the jujuc.ContextRelations interface.
func (c *Context) ApplicationSettings(id int, application string) (map[string]string, error) {
	c.Stub.AddCall("ApplicationSettings", id, application)
	if err := c.Stub.NextErr(); err != nil {
		return nil, errors.Trace(err)
	}
	rel, err := c.relation(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result := make(map[string]string)
	for k, v := range rel.Settings[application] {
		result[k] = v
	}
	return result, nil
}

// SetApplicationSettings is part of the jujuc.ContextRelations interface.
func (c *Context) SetApplicationSettings(id int, settings map[string]string) error {
	c.Stub.AddCall("SetApplicationSettings", id, settings)
	if err := c.Stub.NextErr(); err != nil {
		return errors.Trace(err)
	}
	if _, err := c.relation(id); err != nil {
		return errors.Trace(err)
	}
	if !c.Leader {
		return errors.Unauthorizedf("setting application settings as non-leader unit %q", c.Unit)
	}
	c.UpdateApplicationSettings(id, c.Application, settings)
	return nil
}

// ConfigGet is part of the jujuc.ContextConfig interface.
func (c *Context) ConfigGet(key string) (interface{}, error) {
	c.Stub.AddCall("ConfigGet", key)
	if err := c.Stub.NextErr(); err != nil {
		return nil, errors.Trace(err)
	}
	return c.Config[key], nil
}

// CharmState is part of the jujuc.ContextCharmState interface.
func (c *Context) CharmState() (map[string]string, error) {
	c.Stub.AddCall("CharmState")
	if err := c.Stub.NextErr(); err != nil {
		return nil, errors.Trace(err)
	}
	result := make(map[string]string)
	for k, v := range c.State {
		result[k] = v
	}
	return result, nil
}

// SetCharmStateValue is part of the jujuc.ContextCharmState interface.
func (c *Context) SetCharmStateValue(key, value string) error {
	c.Stub.AddCall("SetCharmStateValue", key, value)
	if err := c.Stub.NextErr(); err != nil {
		return errors.Trace(err)
	}
	c.State[key] = value
	return nil
}

// DeleteCharmStateValue is part of the jujuc.ContextCharmState interface.
func (c *Context) DeleteCharmStateValue(key string) error {
	c.Stub.AddCall("DeleteCharmStateValue", key)
	if err := c.Stub.NextErr(); err != nil {
		return errors.Trace(err)
	}
	delete(c.State, key)
	return nil
}

// Log is part of the jujuc.ContextLogger interface. Log calls are not
// recorded on the stub, so logging does not disturb call checks.
func (c *Context) Log(level loggo.Level, message string) error {
	c.Logs = append(c.Logs, LogEntry{Level: level, Message: message})
	return nil
}

func (c *Context) relation(id int) (*Relation, error) {
	rel, ok := c.Relations[id]
	if !ok {
		return nil, errors.NotFoundf("relation %d", id)
	}
	return rel, nil
}
