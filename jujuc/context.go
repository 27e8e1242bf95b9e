// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jujuc exposes the hook tools the unit agent provides to a running
// hook as a Go interface.
package jujuc

import (
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/core/status"
)

// Context is the interface to everything a charm can do from a hook.
type Context interface {
	ContextUnit
	ContextStatus
	ContextLeadership
	ContextRelations
	ContextConfig
	ContextCharmState
	ContextLogger
}

// ContextUnit is the part of a hook context related to the local unit.
type ContextUnit interface {
	// UnitName returns the executing unit's name.
	UnitName() string

	// ApplicationName returns the name of the application the executing
	// unit belongs to.
	ApplicationName() string
}

// ContextStatus is the part of a hook context related to the unit's status.
type ContextStatus interface {
	// SetUnitStatus updates the unit's workload status.
	SetUnitStatus(status.StatusInfo) error
}

// ContextLeadership is the part of a hook context related to the
// application leadership.
type ContextLeadership interface {
	// IsLeader returns true if the local unit is known to be leader for at
	// least the next 30s.
	IsLeader() (bool, error)
}

// ContextRelations exposes the relations associated with the unit.
type ContextRelations interface {
	// RelationIds returns the ids of all established relations on the
	// given endpoint, in ascending order.
	RelationIds(endpoint string) ([]int, error)

	// RemoteApplication returns the name of the application at the other
	// end of the relation, or "" if none has joined yet.
	RemoteApplication(relationId int) (string, error)

	// ApplicationSettings returns the application data bag the named
	// application holds in the relation.
	ApplicationSettings(relationId int, application string) (map[string]string, error)

	// SetApplicationSettings writes the given keys into the local
	// application's data bag. Only the leader may do so.
	SetApplicationSettings(relationId int, settings map[string]string) error
}

// ContextConfig is the part of a hook context related to charm config.
type ContextConfig interface {
	// ConfigGet returns the current value of the charm config option, or
	// nil if it is unset.
	ConfigGet(key string) (interface{}, error)
}

// ContextCharmState is the part of a hook context holding the unit's
// persisted charm state.
type ContextCharmState interface {
	// CharmState returns all key/value pairs stored for the unit.
	CharmState() (map[string]string, error)

	// SetCharmStateValue stores a single key/value pair for the unit.
	SetCharmStateValue(key, value string) error

	// DeleteCharmStateValue removes a key from the unit's charm state.
	DeleteCharmStateValue(key string) error
}

// ContextLogger sends messages to the unit agent's log.
type ContextLogger interface {
	Log(level loggo.Level, message string) error
}
