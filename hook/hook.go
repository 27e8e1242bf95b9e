// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hook provides types that define the hooks delivered to the charm
// by the unit agent.
package hook

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// NoRelation is the relation id of hooks that are not relation hooks.
const NoRelation = -1

// Info holds details required to handle a hook. Not all fields are
// relevant to all Kind values.
type Info struct {
	Kind Kind

	// RelationName is the endpoint name of the relation associated with
	// the hook, e.g. "db". It is only set when Kind indicates a relation
	// hook.
	RelationName string

	// RelationId identifies the relation associated with the hook. It is
	// NoRelation unless Kind indicates a relation hook.
	RelationId int

	// RemoteUnit is the name of the unit that triggered the hook. It is only
	// set for relation hooks other than relation-created and
	// relation-broken.
	RemoteUnit string

	// RemoteApplication is the name of the application on the other side of
	// the relation.
	RemoteApplication string
}

// Name returns the hook file name the Info was dispatched as.
func (hi Info) Name() string {
	if hi.Kind.IsRelation() {
		return hi.RelationName + "-" + string(hi.Kind)
	}
	return string(hi.Kind)
}

// String is part of fmt.Stringer.
func (hi Info) String() string {
	if hi.Kind.IsRelation() {
		return fmt.Sprintf("%s (relation %d)", hi.Name(), hi.RelationId)
	}
	return hi.Name()
}

// Validate returns an error if the info is not valid.
func (hi Info) Validate() error {
	switch hi.Kind {
	case RelationJoined, RelationChanged, RelationDeparted:
		// Application data changes run relation-changed without a unit.
		appChange := hi.Kind == RelationChanged && hi.RemoteApplication != ""
		if hi.RemoteUnit == "" && !appChange {
			return errors.NotValidf("%q hook without a remote unit", hi.Kind)
		}
		if hi.RemoteUnit != "" && !names.IsValidUnit(hi.RemoteUnit) {
			return errors.NotValidf("remote unit name %q", hi.RemoteUnit)
		}
		fallthrough
	case RelationCreated, RelationBroken:
		if hi.RelationName == "" {
			return errors.NotValidf("%q hook without a relation name", hi.Kind)
		}
		if hi.RelationId < 0 {
			return errors.NotValidf("%q hook with relation id %d", hi.Kind, hi.RelationId)
		}
		return nil
	}
	if hi.Kind.IsUnit() {
		return nil
	}
	return errors.NotValidf("unknown hook kind %q", hi.Kind)
}

// ParseName splits a hook file name into its kind and, for relation hooks,
// the relation endpoint name.
func ParseName(name string) (Kind, string, error) {
	if kind := Kind(name); kind.IsUnit() {
		return kind, "", nil
	}
	for _, kind := range relationKinds {
		suffix := "-" + string(kind)
		if strings.HasSuffix(name, suffix) {
			relation := strings.TrimSuffix(name, suffix)
			if relation == "" {
				break
			}
			return kind, relation, nil
		}
	}
	return "", "", errors.NotValidf("hook name %q", name)
}
